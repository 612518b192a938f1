package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cuemby/burrow/pkg/cache"
	"github.com/cuemby/burrow/pkg/hosts"
	"github.com/cuemby/burrow/pkg/message"
	"github.com/cuemby/burrow/pkg/name"
	"github.com/cuemby/burrow/pkg/query"
	"github.com/cuemby/burrow/pkg/rdata"
	"github.com/cuemby/burrow/pkg/wire"
	"github.com/miekg/dns"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Validate one response and show what it commits",
	Long: `Parse runs a response read from a file through validation and the
query processor for its type, then prints the outcome and the cache
entries it produced.

The query ID and RD bit default to those in the response header so a
captured response can be checked without knowing the original query.`,
	Example: `  # Check a captured A response
  burrow parse --name example.com --type A --file answer.bin

  # Same, from a hex dump, as if it arrived over TCP
  burrow parse --name example.com --type MX --file answer.hex --hex --transport tcp`,
	RunE: runParse,
}

func init() {
	parseCmd.Flags().String("name", "", "Queried name (required)")
	parseCmd.Flags().String("type", "A", "Queried type")
	parseCmd.Flags().StringP("file", "f", "", "File holding the response (required)")
	parseCmd.Flags().Bool("hex", false, "File is hex encoded")
	parseCmd.Flags().String("transport", "udp", "Transport the response arrived on (udp, tcp)")
	parseCmd.Flags().Uint16("id", 0, "Query ID (default: the response's)")
	parseCmd.Flags().Bool("rd", true, "Query had RD set (default: the response's)")
	parseCmd.Flags().Bool("do", false, "Query had the EDNS DO bit set")
	parseCmd.Flags().Bool("use-hosts", false, "Install the hosts file as fixed entries first")
	parseCmd.Flags().String("hosts-file", hosts.DefaultPath, "Hosts file for --use-hosts")
	_ = parseCmd.MarkFlagRequired("name")
	_ = parseCmd.MarkFlagRequired("file")
}

func runParse(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	owner, _ := flags.GetString("name")
	typeName, _ := flags.GetString("type")
	path, _ := flags.GetString("file")
	isHex, _ := flags.GetBool("hex")

	handler, err := handlerFor(typeName)
	if err != nil {
		return err
	}
	msg, err := readResponse(path, isHex)
	if err != nil {
		return err
	}
	q, err := buildQuery(cmd, owner, handler.DataType(), msg)
	if err != nil {
		return err
	}

	c := cache.New()
	if use, _ := flags.GetBool("use-hosts"); use {
		entries, err := hosts.Load(cfg.HostsFile)
		if err != nil {
			return err
		}
		entries.Install(c)
	}

	now := wire.Now()
	summary, err := handler.Handle(c, q, msg, now)
	if err != nil {
		return fmt.Errorf("response rejected: %w", err)
	}
	printSummary(summary, now)
	printLookup(c, handler, q.Name, now)
	return nil
}

func handlerFor(typeName string) (query.Handler, error) {
	code, ok := dns.StringToType[strings.ToUpper(typeName)]
	if !ok {
		return nil, fmt.Errorf("unknown type: %s", typeName)
	}
	handler, ok := query.ForType(rdata.DataType(code))
	if !ok {
		var supported []string
		for _, t := range query.Types() {
			supported = append(supported, t.String())
		}
		return nil, fmt.Errorf("unsupported type %s (supported: %s)", typeName, strings.Join(supported, ", "))
	}
	return handler, nil
}

func readResponse(path string, isHex bool) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %v", err)
	}
	if !isHex {
		return data, nil
	}
	decoded, err := hex.DecodeString(strings.Join(strings.Fields(string(data)), ""))
	if err != nil {
		return nil, fmt.Errorf("failed to decode hex: %v", err)
	}
	return decoded, nil
}

// buildQuery reconstructs the query; flags the user did not set are taken
// from the response header
func buildQuery(cmd *cobra.Command, owner string, t rdata.DataType, msg []byte) (message.Query, error) {
	n, err := name.Parse(owner)
	if err != nil {
		return message.Query{}, fmt.Errorf("invalid name %q: %w", owner, err)
	}
	transport, err := message.ParseTransport(cfg.Transport)
	if err != nil {
		return message.Query{}, err
	}

	flags := cmd.Flags()
	q := message.NewQuery(0, n, t)
	q.Transport = transport
	q.DNSSECOK, _ = flags.GetBool("do")
	if header, err := message.ParseHeader(msg); err == nil {
		q.ID = header.ID
		q.RecursionDesired = header.RecursionDesired
		q.CheckingDisabled = header.CheckingDisabled
	}
	if flags.Changed("id") {
		q.ID, _ = flags.GetUint16("id")
	}
	if flags.Changed("rd") {
		q.RecursionDesired, _ = flags.GetBool("rd")
	}
	return q, nil
}

func printSummary(s query.Summary, now wire.NanosecondsSinceUnixEpoch) {
	fmt.Printf("Outcome:        %s\n", s.Outcome)
	fmt.Printf("Canonical name: %s\n", s.CanonicalName)
	fmt.Printf("Cache until:    %s\n", describeUntil(s.Until, now))
	if s.Outcome == message.OutcomeNoData || s.Outcome == message.OutcomeNoDomain {
		fmt.Printf("Zone:           %s\n", s.Zone)
	}
	if len(s.Records) > 0 {
		fmt.Println("Records:")
		for _, r := range s.Records {
			fmt.Printf("  %s\n", r)
		}
	}
	for _, err := range s.Ignored {
		fmt.Printf("Ignored:        %v\n", err)
		var recordErr *message.RecordError
		if errors.As(err, &recordErr) && recordErr.Data != nil {
			fmt.Printf("                %s\n", recordErr.Data)
		}
	}
}

func printLookup(c *cache.Cache, handler query.Handler, owner name.CaseFoldedName, now wire.NanosecondsSinceUnixEpoch) {
	fmt.Println()
	fmt.Println("Cache:")
	snapshot := c.Export(now)
	for _, a := range snapshot.Aliases {
		fmt.Printf("  %s CNAME %s\n", a.Name, a.Target)
	}
	for _, a := range snapshot.Addresses {
		for _, addr := range a.Addresses {
			fmt.Printf("  %s %s %s\n", a.Name, a.Type, addr)
		}
	}
	for _, n := range snapshot.NoDomains {
		fmt.Printf("  %s NXDOMAIN (zone %s)\n", n.Name, n.Zone)
	}
	if zone, soa, _, ok := c.ZoneOf(owner, now); ok {
		fmt.Printf("  %s SOA %s %d\n", zone, soa.PrimaryNameServer, soa.Serial)
	}
	if snapshot.Len() == 0 {
		fmt.Printf("  nothing cacheable for %s %s\n", owner, handler.DataType())
	}
}

func describeUntil(u cache.CacheUntil, now wire.NanosecondsSinceUnixEpoch) string {
	if u.IsUseOnce() {
		return "use once"
	}
	return fmt.Sprintf("%s (%ds)", u.Instant().Time().Format("2006-01-02T15:04:05Z07:00"), u.TimeToLive(now))
}
