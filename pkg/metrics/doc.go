/*
Package metrics exposes Prometheus metrics for the burrow parsing and
caching pipeline.

All metrics are package-level variables registered with the default
registry in init, so any package can increment them without wiring.

# Metrics Catalog

Response parsing:
  - burrow_responses_total{outcome}: answered, no_domain, no_data, referral
  - burrow_response_errors_total{kind}: header, question, record, rcode, chain, authority
  - burrow_records_ignored_total{type}: records skipped with an ignored reason
  - burrow_parse_duration_seconds: response validation latency

Cache:
  - burrow_cache_lookups_total{result}: fixed, hit, negative, miss
  - burrow_cache_invariant_violations_total: inconsistent expiry merges
  - burrow_coalesced_fetches_total: lookups that joined an in-flight fetch

# Timer

	timer := metrics.NewTimer()
	outcome, err := processor.Process(c, query, message, now)
	timer.ObserveDuration(metrics.ParseDuration)
*/
package metrics
