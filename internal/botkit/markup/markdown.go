package markup

import (
	"fmt"
	"strings"
)

// Символы, которые телеграм требует экранировать в MarkdownV2
const specialChars = "\\_*[]()~`>#+-=|{}.!"

var replacer = func() *strings.Replacer {
	pairs := make([]string, 0, len(specialChars)*2)
	for _, c := range specialChars {
		pairs = append(pairs, string(c), "\\"+string(c))
	}
	return strings.NewReplacer(pairs...)
}()

// Функция которая делает escape спец символов markdown специально для телеграма
func EscapeForMarkdown(src string) string {
	return replacer.Replace(src)
}

func Bold(src string) string {
	return "*" + EscapeForMarkdown(src) + "*"
}

// Link - ссылка с текстом. Внутри url экранируются только ")" и "\"
func Link(text, url string) string {
	url = strings.NewReplacer("\\", "\\\\", ")", "\\)").Replace(url)
	return fmt.Sprintf("[%s](%s)", EscapeForMarkdown(text), url)
}
