// smsctl — консольная утилита оператора шлюза
// Работает напрямую с каталогами спула и журналом квоты,
// минуя HTTP API
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/milaq/smstools-http-api/internal/auth"
	"github.com/milaq/smstools-http-api/internal/config"
	"github.com/milaq/smstools-http-api/internal/repository"
	"github.com/milaq/smstools-http-api/internal/service"
)

var (
	sendText  string
	sendQueue string
	fromUser  string
)

var rootCmd = &cobra.Command{
	Use:          "smsctl",
	Short:        "Управление спулом smstools и квотой с хоста шлюза",
	SilenceUsage: true,
}

// services собирает сервисный слой поверх локальных каталогов
// Оператор с правами на файлы спула эквивалентен администратору,
// поэтому предикаты доступа выключены
func services() (*service.SpoolService, *service.SendService, *service.QuotaService, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("загрузка конфигурации: %w", err)
	}

	authorizer := auth.New(config.AuthConfig{Enabled: false})
	spoolRepo := repository.NewSpoolRepository(cfg.Spool)
	quotaRepo := repository.NewQuotaRepository(cfg.Quota.Filename)

	quotaService := service.NewQuotaService(quotaRepo, authorizer, cfg.Quota)
	spoolService := service.NewSpoolService(spoolRepo, authorizer)
	sendService := service.NewSendService(spoolRepo, quotaService, authorizer, cfg.Spool.Sent)
	return spoolService, sendService, quotaService, nil
}

var listCmd = &cobra.Command{
	Use:   "list [kind]",
	Short: "Показать сообщения в каталоге спула",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		spool, _, _, err := services()
		if err != nil {
			return err
		}

		listing, err := spool.List(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Всего: %d\n", listing.TotalCount)
		for _, id := range listing.MessageIDs {
			fmt.Println(id)
		}
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get [kind] [message-id]",
	Short: "Показать сообщение из спула",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		spool, _, _, err := services()
		if err != nil {
			return err
		}

		msg, err := spool.Get(fromUser, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("From: %s\n", msg.From)
		fmt.Printf("To: %s\n", msg.To)
		fmt.Printf("Alphabet: %s\n", msg.Alphabet)
		if msg.Queue != "" {
			fmt.Printf("Queue: %s\n", msg.Queue)
		}
		fmt.Printf("\n%s\n", msg.Text)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [kind] [message-id]",
	Short: "Удалить сообщение из спула",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		spool, _, _, err := services()
		if err != nil {
			return err
		}

		deleted, err := spool.Delete(fromUser, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Println("Удалено:", deleted)
		return nil
	},
}

var sendCmd = &cobra.Command{
	Use:   "send [mobile]...",
	Short: "Поставить SMS в очередь на отправку",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if sendText == "" {
			return errors.New("текст сообщения обязателен (--text)")
		}

		_, send, _, err := services()
		if err != nil {
			return err
		}

		result, err := send.Send(service.SendRequest{
			Caller:  fromUser,
			Mobiles: args,
			Text:    sendText,
			Queue:   sendQueue,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Сегментов на получателя: %d\n", result.PartsCount)
		for mobile, recipient := range result.Mobiles {
			fmt.Printf("%s: %s (%s)\n", mobile, recipient.Response, recipient.MessageID)
		}
		return nil
	},
}

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Показать состояние квоты",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, quota, err := services()
		if err != nil {
			return err
		}

		if !quota.Enabled() {
			return errors.New("квота не сконфигурирована")
		}
		info, err := quota.Query()
		if err != nil {
			return err
		}
		fmt.Printf("Остаток: %d из %d сегментов, дней до конца периода: %d\n",
			info.Remaining, info.Max, info.DaysLeft)
		return nil
	},
}

var quotaResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Очистить журнал квоты",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, quota, err := services()
		if err != nil {
			return err
		}

		if err := quota.Reset(fromUser); err != nil {
			return err
		}
		fmt.Println("Журнал квоты очищен")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&fromUser, "user", "smsctl", "Учётная запись, от имени которой выполняется операция")
	sendCmd.Flags().StringVar(&sendText, "text", "", "Текст сообщения")
	sendCmd.Flags().StringVar(&sendQueue, "queue", "", "Очередь smsd")

	quotaCmd.AddCommand(quotaResetCmd)
	rootCmd.AddCommand(listCmd, getCmd, deleteCmd, sendCmd, quotaCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
