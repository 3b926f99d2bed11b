package main

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/config"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

type mailKind struct {
	template string
	subject  string
}

var mailKinds = map[string]mailKind{
	"create_user":           {"new_account_email.html", "充电站选址系统 - 账户信息"},
	"reset_password":        {"reset_password_otp_email.html", "充电站选址系统 - 重置密码"},
	"change_email":          {"change_email_email.html", "充电站选址系统 - 修改邮箱"},
	"optimization_finished": {"optimization_finished_email.html", "充电站选址系统 - 选址优化结果"},
}

const templateDir = "./templates"

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * 读取配置文件
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * 预先解析所有邮件模板
	 **********************************************/
	templates := make(map[string]*template.Template, len(mailKinds))
	for kind, mk := range mailKinds {
		tmpl, err := template.ParseFiles(filepath.Join(templateDir, mk.template))
		if err != nil {
			logger.Error("无法解析邮件模板", "type", kind, "error", err)
			return
		}
		templates[kind] = tmpl
	}

	/**********************************************
	 * 创建邮件客户端
	 **********************************************/
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		logger.Error("无法创建邮件客户端", slog.String("error", err.Error()))
		return
	}
	defer client.Close()

	clientDialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancel()
	if err := client.DialWithContext(clientDialCtx); err != nil {
		logger.Error("无法连接到邮件服务器", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * 连接 RabbitMQ
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 RabbitMQ", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("无法创建通道", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		cfg.RabbitMQ.EmailQueue, // 队列名称
		true,                    // 是否持久化
		false,                   // 是否自动删除
		false,                   // 是否独占
		false,                   // 是否不等待
		nil,                     // 额外参数
	)
	if err != nil {
		logger.Error("无法声明队列", slog.String("error", err.Error()))
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	msgs, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		logger.Error("无法消费消息", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Error("消息通道已关闭")
					return
				}
				logger.Info("收到消息", "messageID", msg.MessageId)

				m, err := buildMail(cfg.Email.SMTP.Username, templates, msg.Body)
				if err != nil {
					logger.Error("无法构建邮件", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				if err := client.DialAndSend(m); err != nil {
					logger.Error("邮件发送失败", slog.String("error", err.Error()))
					_ = msg.Nack(false, true) // 将消息重新入队
					continue
				}

				_ = msg.Ack(false)
			}
		}
	}()

	logger.Info("等待消息...（按 CTRL+C 退出）")
	<-sigChan

	slog.Info("正在关闭 mail worker...")
	cancel()
	wg.Wait()
	slog.Info("mail worker 已成功关闭")
}

// buildMail 根据消息类型选择模板并渲染邮件，返回的错误都不值得重试
func buildMail(from string, templates map[string]*template.Template, body []byte) (*mail.Msg, error) {
	var message domain.MailMessage
	if err := json.Unmarshal(body, &message); err != nil {
		return nil, fmt.Errorf("邮件信息反序列化失败: %w", err)
	}

	tmpl, ok := templates[message.Type]
	if !ok {
		return nil, fmt.Errorf("不支持的邮件类型: %s", message.Type)
	}

	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("无法设置邮件发件人: %w", err)
	}
	if err := m.To(message.To); err != nil {
		return nil, fmt.Errorf("无法设置邮件收件人: %w", err)
	}
	if err := m.SetBodyHTMLTemplate(tmpl, message.Data); err != nil {
		return nil, fmt.Errorf("无法设置邮件正文: %w", err)
	}
	m.Subject(mailKinds[message.Type].subject)
	return m, nil
}
