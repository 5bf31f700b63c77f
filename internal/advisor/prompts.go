package advisor

import (
	"fmt"
	"strings"
)

// Each prompt embeds the spending summary verbatim and names the JSON keys
// the strategy expects back.

func buildLimePrompt(summary Summary) string {
	var b strings.Builder
	b.WriteString("Based on the following past spending summary, suggest a budget for next month for each category.\n")
	b.WriteString("Also provide specific advice on where to cut costs to save money.\n")
	b.WriteString("Return ONLY a JSON object: {\"budget\": {category: amount}, \"savings_advice\": \"string\"}.\n")
	fmt.Fprintf(&b, "Spending Summary: %s\n", summary)
	return b.String()
}

func buildStandardPrompt(summary Summary) string {
	var b strings.Builder
	b.WriteString("Based on the following past spending summary, suggest a budget for next month.\n")
	b.WriteString("Also provide specific advice on where to cut costs to save money.\n")
	b.WriteString("Provide the output as a JSON object with keys: \"budget\" (dict of category: amount), ")
	b.WriteString("\"reason\" (string explanation), and \"savings_advice\" (string).\n")
	fmt.Fprintf(&b, "Spending Summary: %s\n", summary)
	return b.String()
}

func buildCoTPrompt(summary Summary) string {
	var b strings.Builder
	b.WriteString("Based on the following past spending summary, suggest a budget for next month.\n")
	b.WriteString("Think step by step. First analyze the spending habits, then consider savings, then propose the budget.\n")
	b.WriteString("Return JSON: {\"thoughts\": \"step-by-step analysis string\", \"budget\": {category: amount}, \"savings_advice\": \"string\"}\n")
	fmt.Fprintf(&b, "Spending Summary: %s\n", summary)
	return b.String()
}

func buildDraftPrompt(summary Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Draft a budget for next month based on: %s.\n", summary)
	b.WriteString("Return JSON {category: amount}.\n")
	return b.String()
}

// buildCritiquePrompt embeds the raw draft text exactly as it was returned.
func buildCritiquePrompt(summary Summary, draft string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Critique this draft budget: %s.\n", draft)
	fmt.Fprintf(&b, "Check if it's too high or too low compared to past spending: %s.\n", summary)
	b.WriteString("Then provide a FINAL better budget and savings advice.\n")
	b.WriteString("Return JSON: {\"critique\": \"analysis\", \"budget\": {category: amount}, \"savings_advice\": \"string\"}\n")
	return b.String()
}
