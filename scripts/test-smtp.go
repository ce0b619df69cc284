package main

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"time"
)

func main() {
	if len(os.Args) < 4 {
		fmt.Println("Использование: go run test-smtp.go <smtp-host> <smtp-port> <mobile@domain>")
		fmt.Println("Пример: go run test-smtp.go localhost 2525 +79991234567@sms.localdomain")
		os.Exit(1)
	}

	host := os.Args[1]
	port := os.Args[2]
	to := os.Args[3]

	addr := fmt.Sprintf("%s:%s", host, port)
	fmt.Printf("Подключение к SMTP-шлюзу %s...\n", addr)

	// Создаём клиент
	client, err := smtp.Dial(addr)
	if err != nil {
		log.Fatalf("Ошибка подключения: %v", err)
	}
	defer client.Close()

	fmt.Println("✓ Подключение успешно!")

	// Устанавливаем отправителя
	if err := client.Mail("operator@example.com"); err != nil {
		log.Fatalf("Ошибка MAIL FROM: %v", err)
	}
	fmt.Println("✓ MAIL FROM установлен")

	// Устанавливаем получателя
	if err := client.Rcpt(to); err != nil {
		log.Fatalf("Ошибка RCPT TO: %v", err)
	}
	fmt.Printf("✓ RCPT TO установлен для %s\n", to)

	// Отправляем данные
	wc, err := client.Data()
	if err != nil {
		log.Fatalf("Ошибка DATA: %v", err)
	}

	message := fmt.Sprintf("From: operator@example.com\r\nTo: %s\r\nSubject: Test\r\n\r\nТестовое SMS через шлюз, %s\r\n", to, time.Now().Format(time.RFC3339))
	_, err = wc.Write([]byte(message))
	if err != nil {
		log.Fatalf("Ошибка записи: %v", err)
	}

	err = wc.Close()
	if err != nil {
		log.Fatalf("Ошибка закрытия DATA: %v", err)
	}

	fmt.Println("✓ Письмо отправлено успешно!")
	fmt.Println("Проверьте каталог outgoing или логи шлюза")
}
