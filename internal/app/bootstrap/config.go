package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServiceID string

	HTTPPort int
	GRPCPort int

	DatabaseURL  string
	KafkaBrokers []string

	MaxDBConns int32

	KafkaTopicOrderPaidOut   string
	KafkaTopicOrderCancelled string
	KafkaTopicAnalytics      string
	KafkaTopicDLQ            string

	AuthoritySubject string
	EscrowAccountID  string
	NoticeWindowDays int

	IdempotencyTTL     time.Duration
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
}

type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL              string   `yaml:"postgres_url"`
		KafkaBrokers             []string `yaml:"kafka_brokers"`
		KafkaTopicOrderPaidOut   string   `yaml:"kafka_topic_order_paid_out"`
		KafkaTopicOrderCancelled string   `yaml:"kafka_topic_order_cancelled"`
		KafkaTopicAnalytics      string   `yaml:"kafka_topic_analytics"`
		KafkaTopicDLQ            string   `yaml:"kafka_topic_dlq"`
	} `yaml:"dependencies"`
	Escrow struct {
		AuthoritySubject string `yaml:"authority_subject"`
		EscrowAccountID  string `yaml:"escrow_account_id"`
		NoticeWindowDays int    `yaml:"notice_window_days"`
	} `yaml:"escrow"`
}

func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:                "Order-Escrow-Service",
		HTTPPort:                 8080,
		GRPCPort:                 9090,
		MaxDBConns:               20,
		KafkaTopicOrderPaidOut:   "escrow.order_paid_out",
		KafkaTopicOrderCancelled: "escrow.order_cancelled",
		KafkaTopicAnalytics:      "escrow.analytics",
		KafkaTopicDLQ:            "order-escrow-service.dlq",
		AuthoritySubject:         "treasury_ops",
		EscrowAccountID:          "escrow_custody",
		NoticeWindowDays:         7,
		IdempotencyTTL:           7 * 24 * time.Hour,
		OutboxPollInterval:       2 * time.Second,
		OutboxBatchSize:          100,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if len(f.Dependencies.KafkaBrokers) > 0 {
			cfg.KafkaBrokers = trimNonEmpty(f.Dependencies.KafkaBrokers)
		}
		if f.Dependencies.KafkaTopicOrderPaidOut != "" {
			cfg.KafkaTopicOrderPaidOut = f.Dependencies.KafkaTopicOrderPaidOut
		}
		if f.Dependencies.KafkaTopicOrderCancelled != "" {
			cfg.KafkaTopicOrderCancelled = f.Dependencies.KafkaTopicOrderCancelled
		}
		if f.Dependencies.KafkaTopicAnalytics != "" {
			cfg.KafkaTopicAnalytics = f.Dependencies.KafkaTopicAnalytics
		}
		if f.Dependencies.KafkaTopicDLQ != "" {
			cfg.KafkaTopicDLQ = f.Dependencies.KafkaTopicDLQ
		}
		if f.Escrow.AuthoritySubject != "" {
			cfg.AuthoritySubject = f.Escrow.AuthoritySubject
		}
		if f.Escrow.EscrowAccountID != "" {
			cfg.EscrowAccountID = f.Escrow.EscrowAccountID
		}
		if f.Escrow.NoticeWindowDays > 0 {
			cfg.NoticeWindowDays = f.Escrow.NoticeWindowDays
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaTopicOrderPaidOut = envOrDefault("KAFKA_TOPIC_ORDER_PAID_OUT", cfg.KafkaTopicOrderPaidOut)
	cfg.KafkaTopicOrderCancelled = envOrDefault("KAFKA_TOPIC_ORDER_CANCELLED", cfg.KafkaTopicOrderCancelled)
	cfg.KafkaTopicAnalytics = envOrDefault("KAFKA_TOPIC_ANALYTICS", cfg.KafkaTopicAnalytics)
	cfg.KafkaTopicDLQ = envOrDefault("KAFKA_TOPIC_DLQ", cfg.KafkaTopicDLQ)
	cfg.AuthoritySubject = envOrDefault("ESCROW_AUTHORITY_SUBJECT", cfg.AuthoritySubject)
	cfg.EscrowAccountID = envOrDefault("ESCROW_ACCOUNT_ID", cfg.EscrowAccountID)
	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))
	cfg.NoticeWindowDays = envInt("CANCELLATION_NOTICE_DAYS", cfg.NoticeWindowDays)
	cfg.IdempotencyTTL = time.Duration(envInt("IDEMPOTENCY_TTL_HOURS", int(cfg.IdempotencyTTL.Hours()))) * time.Hour
	cfg.OutboxPollInterval = time.Duration(envInt("OUTBOX_POLL_SECONDS", int(cfg.OutboxPollInterval.Seconds()))) * time.Second
	cfg.OutboxBatchSize = envInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)

	return cfg, nil
}

func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envCSV(name string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	return trimNonEmpty(strings.Split(raw, ","))
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
