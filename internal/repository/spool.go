package repository

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/milaq/smstools-http-api/internal/config"
	"github.com/milaq/smstools-http-api/internal/domain"
)

// LockSuffix помечает ещё не записанные до конца файлы
// Спулер smsd игнорирует такие имена, листинг — тоже
const LockSuffix = ".LOCK"

// SpoolRepository — репозиторий сообщений поверх каталогов спула smstools
// Атомарность обеспечивается файловой системой: запись во временное имя
// с суффиксом .LOCK и rename в финальное имя в том же каталоге
type SpoolRepository struct {
	dirs  map[string]string // Вид спула → каталог
	limit int               // Ограничение листинга (0 — без ограничения)
}

// NewSpoolRepository создаёт новый репозиторий
func NewSpoolRepository(cfg config.SpoolConfig) *SpoolRepository {
	return &SpoolRepository{
		dirs:  cfg.Kinds(),
		limit: cfg.Limit,
	}
}

// KnownKind проверяет, что вид спула сконфигурирован
func (r *SpoolRepository) KnownKind(kind string) bool {
	_, ok := r.dirs[kind]
	return ok
}

// List возвращает идентификаторы сообщений в каталоге спула
// Файлы с суффиксом .LOCK не видны; общий счётчик считается до усечения
func (r *SpoolRepository) List(kind string) (*domain.SpoolListing, error) {
	entries, err := os.ReadDir(r.dirs[kind])
	if err != nil {
		return nil, fmt.Errorf("чтение каталога спула %s: %w", kind, err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), LockSuffix) {
			continue
		}
		ids = append(ids, entry.Name())
	}
	sort.Strings(ids)

	listing := &domain.SpoolListing{
		TotalCount: len(ids),
		Limit:      r.limit,
		MessageIDs: ids,
	}
	if r.limit > 0 && len(ids) > r.limit {
		listing.MessageIDs = ids[:r.limit]
	}
	return listing, nil
}

// Create записывает сообщение в спул под msg.ID
// Протокол: запись в <id>.LOCK, затем атомарный rename в <id>
// Читатели каталога никогда не видят частично записанный файл
func (r *SpoolRepository) Create(kind string, msg *domain.Message, body []byte) error {
	dir := r.dirs[kind]
	lockFile := filepath.Join(dir, msg.ID+LockSuffix)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\n", msg.From)
	fmt.Fprintf(&buf, "To: %s\n", msg.To)
	fmt.Fprintf(&buf, "Alphabet: %s\n", msg.Alphabet)
	if msg.Queue != "" {
		fmt.Fprintf(&buf, "Queue: %s\n", msg.Queue)
	}
	buf.WriteByte('\n')
	buf.Write(body)

	if err := os.WriteFile(lockFile, buf.Bytes(), 0o660); err != nil {
		return fmt.Errorf("запись lock-файла: %w", err)
	}

	msgFile := filepath.Join(dir, msg.ID)
	if err := os.Rename(lockFile, msgFile); err != nil {
		return fmt.Errorf("публикация сообщения: %w", err)
	}

	// rw для владельца и группы: файл читает и удаляет процесс smsd
	if err := os.Chmod(msgFile, 0o660); err != nil {
		return fmt.Errorf("установка прав на сообщение: %w", err)
	}
	return nil
}

// Get читает и разбирает сообщение из спула
// Заголовки разбираются до первой пустой строки; строка, в которой
// не ровно одно двоеточие, молча пропускается — формат прощает
// правленные вручную файлы
func (r *SpoolRepository) Get(kind, id string) (*domain.Message, error) {
	data, err := os.ReadFile(filepath.Join(r.dirs[kind], id))
	if err != nil {
		return nil, err
	}

	headers := make(map[string]string)
	rest := data
	for len(rest) > 0 {
		var line []byte
		if nl := bytes.IndexByte(rest, '\n'); nl >= 0 {
			line, rest = rest[:nl], rest[nl+1:]
		} else {
			line, rest = rest, nil
		}
		if len(bytes.TrimRight(line, "\r")) == 0 {
			break
		}
		parts := strings.Split(string(line), ":")
		if len(parts) != 2 {
			continue
		}
		headers[parts[0]] = strings.TrimSpace(parts[1])
	}

	text, err := decodeBody(rest, headers["Alphabet"])
	if err != nil {
		return nil, fmt.Errorf("декодирование тела сообщения %s: %w", id, err)
	}

	return &domain.Message{
		ID:       id,
		Kind:     kind,
		From:     headers["From"],
		To:       headers["To"],
		Alphabet: domain.Alphabet(headers["Alphabet"]),
		Queue:    headers["Queue"],
		Text:     text,
		Headers:  headers,
	}, nil
}

// Remove удаляет сообщение и возвращает квалифицированное имя
func (r *SpoolRepository) Remove(kind, id string) (string, error) {
	if err := os.Remove(filepath.Join(r.dirs[kind], id)); err != nil {
		return "", err
	}
	return kind + "/" + id, nil
}

// decodeBody декодирует тело по заголовку Alphabet
// Отсутствующий или неизвестный Alphabet означает UTF-8: сообщения,
// положенные в спул локально из командной строки, идут без заголовка
// и совместимы с ASCII
func decodeBody(body []byte, alphabet string) (string, error) {
	switch {
	case strings.HasPrefix(alphabet, "UCS"):
		dec := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
		decoded, err := dec.Bytes(body)
		if err != nil {
			return "", err
		}
		return string(decoded), nil
	case strings.HasPrefix(alphabet, "ISO"):
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(body)
		if err != nil {
			return "", err
		}
		return string(decoded), nil
	default:
		return string(body), nil
	}
}
