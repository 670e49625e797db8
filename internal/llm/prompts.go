package llm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/athorburn/concordia/internal/model"
)

// System messages for the two structured call sites
const (
	ExtractionSystem = "You are an expert historian extracting structured information from historical texts. Respond only with JSON."
	JudgeSystem      = "You are an expert historian evaluating historiographical divergence between accounts of historical events. Be objective, fair, and focus on factual consistency. Respond only with JSON."
)

// BuildExtractionPrompt builds the schema-constrained extraction request
// for one (chunk, event) candidate
func BuildExtractionPrompt(chunkText string, event model.Event, docTitle, author string) string {
	var b strings.Builder

	fmt.Fprintf(&b, `Analyze the following excerpt from "%s" by %s and determine whether it describes the event "%s".

EXCERPT:
%s

`, docTitle, author, event.Name, chunkText)

	fmt.Fprintf(&b, `Respond with a JSON object of this exact shape:
{
  "relevant": true or false,
  "event": %q,
  "author": %q,
  "claims": ["each factual claim the author makes about the event"],
  "temporal_details": {"date": "as written in the text", "time": "as written in the text"},
  "tone": "one of: neutral, celebratory, somber, defensive, sympathetic, critical, descriptive",
  "key_quotes": ["short verbatim quotes supporting the claims"]
}

Rules:
- If the excerpt has no real bearing on the event, set "relevant" to false and leave the other fields empty. Keyword overlap alone does not make it relevant.
- Claims must be grounded in the excerpt, not in outside knowledge.
- Omit temporal_details keys the text does not mention.
- tone must be exactly one value from the allowed set.`, event.ID, author)

	return b.String()
}

// fewShotExamples precede the judge task under the few-shot strategy
const fewShotExamples = `EXAMPLES:

Example 1:
Event: Fort Sumter Decision
Account 1 claims: ["Lincoln decided to resupply the fort", "The bombardment began April 12, 1861"]
Account 2 claims: ["Lincoln decided to resupply the fort", "The bombardment began April 12, 1861"]
Verdict: consistency_score=95, contradiction_type="None" (the accounts align)

Example 2:
Event: Gettysburg Address
Account 1 claims: ["The speech was 272 words", "Delivered November 19, 1863"]
Account 2 claims: ["The speech was about 300 words", "Delivered November 19, 1863"]
Verdict: consistency_score=85, contradiction_type="Factual" (minor factual difference in word count)

Example 3:
Event: Election Night 1860
Account 1 claims: ["Lincoln waited at the telegraph office", "Results arrived through the night"]
Account 2 claims: ["Lincoln waited at the telegraph office"]
Verdict: consistency_score=70, contradiction_type="Omission" (the second account omits how the results arrived)

Now evaluate the following:

`

// chainOfThoughtSteps is prepended to the judge instructions under the
// chain-of-thought strategy
const chainOfThoughtSteps = `Before settling on your final answer, reason step by step:
1. List the factual claims in both accounts.
2. Compare each claim for agreement or disagreement.
3. Classify any contradiction found.
4. Note omissions present in one account but not the other.
5. Derive the consistency score from that analysis.
Record the full chain of reasoning in the "reasoning" field.

`

// BuildJudgePrompt builds the pairwise comparison request under the given
// prompt strategy
func BuildJudgePrompt(pair model.ComparisonPair, strategy model.PromptStrategy) string {
	var b strings.Builder

	if strategy == model.StrategyFewShot {
		b.WriteString(fewShotExamples)
	}

	fmt.Fprintf(&b, `Compare two accounts of the event "%s".

ACCOUNT 1 — %s:
Claims:
%s
Temporal details: %s
Tone: %s

ACCOUNT 2 — %s:
Claims:
%s
Temporal details: %s
Tone: %s

`,
		pair.EventName,
		pair.Lincoln.Author, formatClaims(pair.Lincoln.Claims), formatTemporal(pair.Lincoln.TemporalDetails), pair.Lincoln.Tone,
		pair.Other.Author, formatClaims(pair.Other.Claims), formatTemporal(pair.Other.TemporalDetails), pair.Other.Tone,
	)

	if strategy == model.StrategyChainOfThought {
		b.WriteString(chainOfThoughtSteps)
	}

	b.WriteString(`Respond with a JSON object of this exact shape:
{
  "consistency_score": integer from 0 to 100 (100 = perfectly consistent, 0 = completely contradictory),
  "contradiction_type": "Factual" | "Interpretive" | "Omission" | "None",
  "reasoning": "detailed explanation of the score and classification",
  "key_differences": ["notable differences between the accounts"],
  "key_similarities": ["notable agreements between the accounts"]
}

Judge only what the accounts say: claims, temporal details, and tone. Do not reward or penalize either account for historical accuracy.`)

	return b.String()
}

func formatClaims(claims []string) string {
	if len(claims) == 0 {
		return "  (none)"
	}
	var b strings.Builder
	for _, c := range claims {
		fmt.Fprintf(&b, "  - %s\n", c)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatTemporal(details map[string]string) string {
	if len(details) == 0 {
		return "(none)"
	}
	var parts []string
	for _, key := range []string{"date", "time"} {
		if v, ok := details[key]; ok {
			parts = append(parts, key+"="+v)
		}
	}
	var extra []string
	for k := range details {
		if k != "date" && k != "time" {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		parts = append(parts, k+"="+details[k])
	}
	return strings.Join(parts, ", ")
}
