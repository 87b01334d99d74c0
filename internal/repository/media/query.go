package media

import (
	"fmt"
	"strings"

	"github.com/averene/folio/internal/domain"
)

// buildLexicalQuery assembles the FT.SEARCH query for keyword search.
//
// The query tokens match inclusively (OR) across the text fields, and
// every expanded keyword adds exact TAG/TEXT alternatives, so a hit on
// any clause qualifies a document. An optional type filter ANDs with the
// whole group.
func buildLexicalQuery(tokens, keywords []string, mediaType string) string {
	var clauses []string

	if len(tokens) > 0 {
		or := make([]string, len(tokens))
		for i, t := range tokens {
			or[i] = escapeToken(t)
		}
		joined := strings.Join(or, "|")
		clauses = append(clauses,
			fmt.Sprintf("@title|category_text|tags_text:(%s)", joined))
	}

	if len(keywords) > 0 {
		tagOr := make([]string, len(keywords))
		textOr := make([]string, len(keywords))
		for i, kw := range keywords {
			tagOr[i] = escapeTag(kw)
			textOr[i] = escapeToken(kw)
		}
		clauses = append(clauses,
			fmt.Sprintf("@tags:{%s}", strings.Join(tagOr, "|")),
			fmt.Sprintf("@category:{%s}", strings.Join(tagOr, "|")),
			fmt.Sprintf("@title:(%s)", strings.Join(textOr, "|")),
		)
	}

	if len(clauses) == 0 {
		return ""
	}

	group := "(" + strings.Join(clauses, " | ") + ")"

	if mediaType != "" {
		return fmt.Sprintf("@type:{%s} %s", escapeTag(mediaType), group)
	}
	return group
}

// buildFilterQuery assembles the FT.SEARCH query for sorted listing.
func buildFilterQuery(f domain.ListFilter) string {
	var parts []string

	if f.Type != "" {
		parts = append(parts, fmt.Sprintf("@type:{%s}", escapeTag(f.Type)))
	}
	if f.Category != "" {
		parts = append(parts, fmt.Sprintf("@category:{%s}", escapeTag(f.Category)))
	}
	if f.Featured != nil {
		flag := "0"
		if *f.Featured {
			flag = "1"
		}
		parts = append(parts, fmt.Sprintf("@featured:[%s %s]", flag, flag))
	}

	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

func escapeToken(s string) string {
	return queryEscaper.Replace(s)
}

func escapeTag(s string) string {
	return tagEscaper.Replace(s)
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
)

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
)
