package domain

// Alphabet — кодировка сообщения на уровне транспорта
type Alphabet string

const (
	// AlphabetISO — однобайтовая кодировка (ISO-8859-1), 153 символа на сегмент
	AlphabetISO Alphabet = "ISO"
	// AlphabetUCS2 — двухбайтовая кодировка (UCS-2, big-endian), 67 символов на сегмент
	AlphabetUCS2 Alphabet = "UCS2"
)

// Message — одно сообщение в спуле
// На диске хранится в формате smstools: заголовки, пустая строка, тело
type Message struct {
	ID       string            // Имя файла в каталоге спула
	Kind     string            // Вид спула (incoming/outgoing/sent/failed)
	From     string            // Отправитель (учётная запись)
	To       string            // Номер получателя
	Alphabet Alphabet          // Кодировка тела
	Queue    string            // Очередь smsd (необязательно)
	Text     string            // Декодированный текст сообщения
	Headers  map[string]string // Все заголовки файла как есть
}

// SpoolListing — результат листинга каталога спула
type SpoolListing struct {
	TotalCount int      `json:"total_count"` // Всего сообщений в каталоге
	Limit      int      `json:"limit"`       // Применённое ограничение (0 — без ограничения)
	MessageIDs []string `json:"message_id"`  // Идентификаторы (возможно, усечённые по limit)
}
