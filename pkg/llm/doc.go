// Package llm implements a chat completion client with ordered provider
// failover across OpenAI-compatible endpoints.
//
// # Overview
//
// The package lets callers treat several hosted LLM providers (PiAPI, Groq,
// OpenAI, DeepSeek, or any custom OpenAI-compatible endpoint) as one
// interchangeable text generator. A FailoverClient walks a deterministic
// provider order, attempts each provider at most once per request, and
// sticks to whichever provider answered so later requests skip endpoints
// that already failed during the run.
//
// # Architecture
//
// The package is organized into three layers:
//
//  1. Adapter - one OpenAI-compatible endpoint, exactly one HTTP request per call
//  2. Registry - provider catalog, order resolution, and availability filtering
//  3. FailoverClient - sticky rotation across the available adapters
//
// # Basic Usage
//
//	client := llm.New(llm.Options{
//	    Preferred: "groq",
//	    Providers: []llm.ProviderConfig{
//	        {Name: "piapi", APIKey: os.Getenv("PIAPI_API_KEY")},
//	        {Name: "groq", APIKey: os.Getenv("GROQ_API_KEY")},
//	        {Name: "openai", APIKey: os.Getenv("OPENAI_API_KEY")},
//	    },
//	})
//	defer client.Close()
//
//	gen, err := client.Generate(context.Background(), &llm.GenerationRequest{
//	    Messages:    llm.BuildMessages("You are a market analyst.", "Summarize today."),
//	    Temperature: 0.4,
//	    MaxTokens:   1600,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%s (via %s, %d attempt(s))\n", gen.Text, gen.Provider, gen.Attempts)
//
// # Failover Semantics
//
// The order is resolved once, lazily, on the first Generate call: an
// explicit order (or the default piapi, groq, openai, deepseek) is
// deduplicated, the preferred provider is moved to the front, and providers
// without a credential are filtered out. If nothing remains the client
// returns *NoProviderAvailableError from every call without touching the
// network.
//
// Within one call each available provider is attempted at most once.
// Adapters never retry; a provider that fails is left behind until the
// rotation wraps around to it on a later call. When the sweep exhausts the
// chain the call returns *AllProvidersFailedError wrapping the last
// failure.
//
// # Error Handling
//
// The package distinguishes recoverable attempt failures from fatal client
// states:
//
//   - HTTPError: non-2xx status from a provider (recoverable, rotates)
//   - TransportError: network-level failure (recoverable, rotates)
//   - ResponseError: 2xx without usable completion content (recoverable, rotates)
//   - ConfigError: structurally unusable provider configuration
//   - NoProviderAvailableError: empty available set (fatal for the client)
//   - AllProvidersFailedError: sweep exhausted (fatal for the call)
//
// # Concurrency
//
// A FailoverClient is not safe for concurrent use: it carries a mutable
// active-provider cursor and no internal locking. Create one client per
// logical run. Runs are short-lived, so the cursor intentionally resets
// between them.
package llm
