// Package config loads the burrow YAML configuration file.
//
//	log:
//	  level: debug
//	  json: true
//	hosts_file: /etc/hosts
//	data_dir: /var/lib/burrow
//	transport: udp
//	cache:
//	  max_chain: 6
package config
