package service

import (
	"errors"
	"log"
	"os"

	"github.com/milaq/smstools-http-api/internal/auth"
	"github.com/milaq/smstools-http-api/internal/domain"
	"github.com/milaq/smstools-http-api/internal/repository"
)

// Ошибки сервиса
var (
	ErrUnknownKind     = errors.New("неизвестный вид спула")
	ErrMessageNotFound = errors.New("сообщение не найдено")
	ErrForbidden       = errors.New("доступ запрещён")
)

// SpoolService — операции над сообщениями в спуле
// Читать сообщение может владелец (заголовок From) или администратор,
// удалять — только администратор
type SpoolService struct {
	repo *repository.SpoolRepository
	auth *auth.Authorizer
}

// NewSpoolService создаёт новый сервис
func NewSpoolService(repo *repository.SpoolRepository, authorizer *auth.Authorizer) *SpoolService {
	return &SpoolService{
		repo: repo,
		auth: authorizer,
	}
}

// List возвращает листинг каталога спула
func (s *SpoolService) List(kind string) (*domain.SpoolListing, error) {
	if !s.repo.KnownKind(kind) {
		return nil, ErrUnknownKind
	}
	return s.repo.List(kind)
}

// Get возвращает сообщение, если у пользователя есть на него права
// Гонка между листингом и чтением ожидаема: исчезнувший файл — NotFound
func (s *SpoolService) Get(user, kind, id string) (*domain.Message, error) {
	if !s.repo.KnownKind(kind) {
		return nil, ErrUnknownKind
	}

	msg, err := s.repo.Get(kind, id)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrMessageNotFound
		}
		// Любая ошибка файловой системы здесь не исключительна
		log.Printf("Ошибка чтения сообщения %s/%s: %v", kind, id, err)
		return nil, ErrMessageNotFound
	}

	if msg.From != user && !s.auth.IsAdmin(user) {
		return nil, ErrForbidden
	}
	return msg, nil
}

// Delete удаляет сообщение из спула
// Права проверяются до существования файла
func (s *SpoolService) Delete(user, kind, id string) (string, error) {
	if !s.repo.KnownKind(kind) {
		return "", ErrUnknownKind
	}
	if !s.auth.IsAdmin(user) {
		return "", ErrForbidden
	}

	deleted, err := s.repo.Remove(kind, id)
	if err != nil {
		return "", ErrMessageNotFound
	}
	log.Printf("Пользователь [%s] удалил сообщение [%s]", user, deleted)
	return deleted, nil
}
