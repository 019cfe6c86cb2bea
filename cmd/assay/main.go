// Assay generates and delivers daily PT-BR market reports for gold, silver,
// and copper.
//
// Each report is produced by an LLM behind a provider failover chain
// (PIAPI, Groq, OpenAI, DeepSeek by default), fed with a best-effort market
// data snapshot, numbered by a persistent counter, guarded by a daily send
// lock, and posted to a Telegram chat as HTML.
//
// Usage:
//
//	# Run a report once, printing to stdout
//	assay report gold
//
//	# Run and deliver to Telegram
//	assay report gold --send-telegram
//
//	# Deliver to the test chat instead
//	assay report silver --send-telegram --preview
//
//	# Start the scheduler daemon (all enabled jobs, BRT schedules)
//	assay run
//
//	# Inspect the provider failover chain
//	assay providers --check
//
//	# Query the run history
//	assay ledger list --job gold --limit 20
//
// For complete documentation, see: https://github.com/bullion-hq/assay
package main

func main() {
	Execute()
}
