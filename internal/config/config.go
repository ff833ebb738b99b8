package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Transports and storage backends accepted by Load.
const (
	TransportKafka = "kafka"
	TransportNATS  = "nats"

	StorageDynamoDB   = "dynamodb"
	StorageOpenSearch = "opensearch"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	Transport       string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	KafkaBrokers      []string
	KafkaSourceTopics []string
	KafkaGroupID      string
	// KafkaDLQTopic receives messages that failed to decode or store. Empty disables it.
	KafkaDLQTopic string

	NATSURL     string
	NATSSubject string
	NATSQueue   string
	// NATSDLQSubject receives messages that failed to decode or store. Empty disables it.
	NATSDLQSubject string
	NATSUsername   string
	NATSPassword   string

	StorageBackend string

	// DynamoDBEndpoint overrides the service endpoint, e.g. for DynamoDB Local.
	DynamoDBEndpoint string
	AWSRegion        string

	OpenSearchURL      string
	OpenSearchUsername string
	OpenSearchPassword string

	FIXMTable      string
	IWXXMTable     string
	METReportTable string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Transport:       sharedcfg.EnvOrDefault("TRANSPORT", TransportKafka),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers:      sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopics: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPICS", "fixm,iwxxm,met-report")),
		KafkaGroupID:      sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "swim-data-etl"),
		KafkaDLQTopic:     os.Getenv("KAFKA_DLQ_TOPIC"),

		NATSURL:        sharedcfg.EnvOrDefault("NATS_URL", "nats://localhost:4222"),
		NATSSubject:    sharedcfg.EnvOrDefault("NATS_SUBJECT", "swim.>"),
		NATSQueue:      sharedcfg.EnvOrDefault("NATS_QUEUE", "swim-data-etl"),
		NATSDLQSubject: os.Getenv("NATS_DLQ_SUBJECT"),
		NATSUsername:   os.Getenv("NATS_USERNAME"),
		NATSPassword:   os.Getenv("NATS_PASSWORD"),

		StorageBackend:   sharedcfg.EnvOrDefault("STORAGE_BACKEND", StorageDynamoDB),
		DynamoDBEndpoint: os.Getenv("DYNAMODB_ENDPOINT"),
		AWSRegion:        sharedcfg.EnvOrDefault("AWS_REGION", "ap-southeast-1"),

		OpenSearchURL:      sharedcfg.EnvOrDefault("OPENSEARCH_URL", "http://localhost:9200"),
		OpenSearchUsername: os.Getenv("OPENSEARCH_USERNAME"),
		OpenSearchPassword: os.Getenv("OPENSEARCH_PASSWORD"),

		FIXMTable:      sharedcfg.EnvOrDefault("FIXM_TABLE", "FIXM_FlightData"),
		IWXXMTable:     sharedcfg.EnvOrDefault("IWXXM_TABLE", "IWXXM_FlightData"),
		METReportTable: sharedcfg.EnvOrDefault("METREPORT_TABLE", "METReport_FlightData"),
	}

	switch cfg.Transport {
	case TransportKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if len(cfg.KafkaSourceTopics) == 0 {
			return nil, errors.New("KAFKA_SOURCE_TOPICS is required")
		}
	case TransportNATS:
		if cfg.NATSURL == "" {
			return nil, errors.New("NATS_URL is required")
		}
		if cfg.NATSSubject == "" {
			return nil, errors.New("NATS_SUBJECT is required")
		}
	default:
		return nil, fmt.Errorf("invalid TRANSPORT %q: want %s or %s", cfg.Transport, TransportKafka, TransportNATS)
	}

	switch cfg.StorageBackend {
	case StorageDynamoDB:
		if cfg.AWSRegion == "" {
			return nil, errors.New("AWS_REGION is required")
		}
	case StorageOpenSearch:
		if cfg.OpenSearchURL == "" {
			return nil, errors.New("OPENSEARCH_URL is required")
		}
	default:
		return nil, fmt.Errorf("invalid STORAGE_BACKEND %q: want %s or %s", cfg.StorageBackend, StorageDynamoDB, StorageOpenSearch)
	}

	if cfg.FIXMTable == "" || cfg.IWXXMTable == "" || cfg.METReportTable == "" {
		return nil, errors.New("FIXM_TABLE, IWXXM_TABLE and METREPORT_TABLE must not be empty")
	}

	return cfg, nil
}

