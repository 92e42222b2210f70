package utils

import "strings"

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValidPhoneNumber — базовая проверка: 10–15 цифр после очистки.
func IsValidPhoneNumber(raw string) bool {
	n := len(stripNonDigits(raw))
	return n >= 10 && n <= 15
}

// FormatPhoneNumber приводит номер к виду E.164 (по умолчанию считаем US +1).
// Вход, начинающийся с '+', возвращается как есть, без очистки — клиенты
// уже зависят от этого, поведение закреплено тестами.
func FormatPhoneNumber(raw string) string {
	cleaned := stripNonDigits(raw)

	switch {
	case len(cleaned) == 10:
		return "+1" + cleaned
	case len(cleaned) == 11 && strings.HasPrefix(cleaned, "1"):
		return "+" + cleaned
	case strings.HasPrefix(raw, "+"):
		return raw
	}
	return "+" + cleaned
}
