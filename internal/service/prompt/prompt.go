// Package prompt builds the generation prompt from retrieved passages.
package prompt

import (
	"fmt"
	"strings"

	"github.com/kartavya/ragchat/internal/model/rag"
)

// Version tags the instruction template. The wording is part of the contract
// with the generation backend; changing it must bump this value.
const Version = "v1"

const template = `You are a news assistant trained to give direct answers to questions using the following context. Answer the query without redirecting the user, dont mention authors, dont add any promotional content. Your response should be concise but informative, answering the user's question as directly as possible. Ensure the response is clear, relevant, and at least 3 lines long on a mobile screen. You can use the provided passages below as context if context doesnt answer the user query use your own knowledge.

Context:
%s

Question: %s`

// Assemble joins passage texts in retrieval order, separated by blank lines,
// and embeds the context block and query into the instruction template.
func Assemble(query string, passages []rag.Passage) string {
	texts := make([]string, 0, len(passages))
	for _, p := range passages {
		texts = append(texts, p.Text)
	}
	return fmt.Sprintf(template, strings.Join(texts, "\n\n"), query)
}
