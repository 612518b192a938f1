/*
Package log provides structured logging for burrow using zerolog.

A single global zerolog.Logger is configured once with Init and shared by
every package. Until Init is called the logger discards everything, so the
parser and cache can be used as a library without producing output.

# Usage

	log.Init(log.Config{
		Level:      log.DebugLevel,
		JSONOutput: true,
		Output:     os.Stderr,
	})

	parseLog := log.WithComponent("message")
	parseLog.Debug().Str("query", "example.com.").Msg("response rejected")

	qlog := log.WithQuery("resolver", "example.com.", "A")
	qlog.Info().Msg("cache miss")

# Fields

Every component logger carries a "component" field. Query-scoped loggers
add "query" (presentation form of the name) and "type" (record type
mnemonic). Errors are attached with Err so they serialize under "error".
*/
package log
