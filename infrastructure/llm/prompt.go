package llm

import "strings"

// SystemPromptChat is the annotation instruction sent as the system
// message on chat-completions requests. The closing rule matters: weaker
// models otherwise collapse to labeling everything 0.
const SystemPromptChat = `You are a careful annotator for *causal relations* in one sentence.

Goal: return ONLY JSON: {"label": 0 or 1, "confidence": number 0..1}

Labeling rule (binary):
- label=1 if the sentence states or clearly implies that X causes/leads to/makes Y happen (explicit markers like because, due to, leads to, causes, results in; or clear implied cause→effect).
- label=0 if it is merely descriptive, correlational, temporal ("after", "when" without causal force), or unclear.

IMPORTANT:
- Do NOT default to 0. In typical software/requirements text, **25–40%** of sentences are causal.
- If causal cues or a clear mechanism are present, choose 1.

Examples (POSITIVE):
- "This change caused a crash." -> {"label":1, "confidence":0.95}
- "Due to a race condition, requests time out under load." -> {"label":1, "confidence":0.9}
- "If the token is missing, the API rejects the request." -> {"label":1, "confidence":0.8}
- "Increasing the batch size leads to higher memory usage." -> {"label":1, "confidence":0.85}

Examples (NEGATIVE):
- "We updated the documentation." -> {"label":0, "confidence":0.95}
- "Memory usage is high and latency increased." (no cause stated) -> {"label":0, "confidence":0.7}
- "After deployment, we saw errors." (temporal only) -> {"label":0, "confidence":0.6}`

// SystemPromptResponses is the compact instruction prepended to the
// single input string on structured-output requests.
const SystemPromptResponses = `You are a careful annotator for causal relations in one sentence.
Return ONLY JSON: {"label": 0 or 1, "confidence": 0..1}
Label 1 if the sentence clearly states/implies cause→effect (because, due to, results in, leads to, if X then Y, etc.). Else 0.
Do NOT default to 0; in similar corpora 25–40% are causal.`

// UserMessage renders the per-sentence user prompt.
func UserMessage(sentence string) string {
	escaped := strings.ReplaceAll(sentence, `"`, `\"`)
	return `Sentence: "` + escaped + `"` + "\nReturn JSON only."
}
