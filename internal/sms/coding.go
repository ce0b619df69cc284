// Package sms определяет транспортную кодировку текста сообщения
// и количество SMS-сегментов, которое он займёт
package sms

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/milaq/smstools-http-api/internal/domain"
)

// Размеры сегментов при конкатенации: 160/70 минус заголовок UDH
const (
	PartSizeISO  = 153 // Символов на сегмент в однобайтовой кодировке
	PartSizeUCS2 = 67  // Символов на сегмент в двухбайтовой кодировке
)

// Detect определяет кодировку текста и количество сегментов
// Если все символы укладываются в ISO-8859-1 — однобайтовая кодировка,
// иначе UCS-2 (UTF-16 big-endian, по два байта на символ)
// Возвращает закодированное тело, кодировку и число сегментов
func Detect(text string) ([]byte, domain.Alphabet, int) {
	n := utf8.RuneCountInString(text)

	encoded, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(text))
	if err == nil {
		return encoded, domain.AlphabetISO, parts(n, PartSizeISO)
	}

	enc := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder()
	encoded, _ = enc.Bytes([]byte(text))
	return encoded, domain.AlphabetUCS2, parts(n, PartSizeUCS2)
}

// parts считает сегменты с округлением вверх
// Пустой текст занимает 0 сегментов — правило зафиксировано тестом
func parts(n, size int) int {
	if n == 0 {
		return 0
	}
	return (n + size - 1) / size
}
