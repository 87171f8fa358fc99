// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package assistant wraps the Gemini API for the NR-5 assistant.

Handlers depend on the Generator interface. Gemini is installed when
GEMINI_API_KEY is set, Unavailable otherwise:

	g, err := assistant.NewGemini(ctx, apiKey, "gemini-2.5-flash")
	reply := assistant.Ask(ctx, g, assistant.ChatPrompt(snapshot, question),
		assistant.FallbackChat, assistant.FallbackEmptyReply)

Ask never returns an error. A failed or missing model yields the fallback
text, so the portal keeps working without an API key.
*/
package assistant
