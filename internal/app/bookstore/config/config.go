package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config содержит все настройки приложения Knjizara
// Включает конфигурацию HTTP сервера, PostgreSQL, Redis, Kafka, JWT,
// доставки и фонового воркера объявлений
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	JWT      JWTConfig
	Shipping ShippingConfig
	Worker   WorkerConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Host string // Адрес хоста (по умолчанию 0.0.0.0)
	Port string // Порт сервера (по умолчанию 8080)
}

// DatabaseConfig - настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig - настройки Redis для кеширования категорий
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// KafkaConfig - настройки Kafka для событий каталога и заказов
type KafkaConfig struct {
	Brokers    []string // Список брокеров (формат host:port)
	BookTopic  string   // Топик событий объявлений (book_events)
	OrderTopic string   // Топик событий заказов (order_events)
}

// JWTConfig - настройки проверки JWT токенов
type JWTConfig struct {
	Secret string
}

// ShippingConfig - политика доставки
// Единственный источник порога бесплатной доставки и тарифа:
// одни и те же значения используются в предпросмотре корзины,
// на шаге оформления и при создании заказа
type ShippingConfig struct {
	FreeShippingThreshold float64 // Сумма корзины (RSD), от которой доставка бесплатна
	StandardShippingCost  float64 // Стандартный тариф доставки (RSD)
}

// WorkerConfig - настройки фонового воркера объявлений
type WorkerConfig struct {
	ExpirySchedule string // Cron-расписание проверки устаревших объявлений
	ListingTTLDays int    // Возраст ACTIVE объявления, после которого оно помечается EXPIRED
}

// Load загружает конфигурацию из переменных окружения
// Возвращает ошибку, если не удалось распарсить числовые значения
func Load() (*Config, error) {
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}

	freeShippingThreshold, err := strconv.ParseFloat(getEnv("FREE_SHIPPING_THRESHOLD", "3000"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid FREE_SHIPPING_THRESHOLD value: %w", err)
	}

	standardShippingCost, err := strconv.ParseFloat(getEnv("STANDARD_SHIPPING_COST", "350"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid STANDARD_SHIPPING_COST value: %w", err)
	}

	listingTTLDays, err := strconv.Atoi(getEnv("LISTING_TTL_DAYS", "90"))
	if err != nil {
		return nil, fmt.Errorf("invalid LISTING_TTL_DAYS value: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "knjizara"),
			Password: getEnv("DB_PASSWORD", "knjizara"),
			DBName:   getEnv("DB_NAME", "knjizara"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers:    []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			BookTopic:  getEnv("KAFKA_BOOK_TOPIC", "book_events"),
			OrderTopic: getEnv("KAFKA_ORDER_TOPIC", "order_events"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
		},
		Shipping: ShippingConfig{
			FreeShippingThreshold: freeShippingThreshold,
			StandardShippingCost:  standardShippingCost,
		},
		Worker: WorkerConfig{
			ExpirySchedule: getEnv("LISTING_EXPIRY_SCHEDULE", "0 3 * * *"),
			ListingTTLDays: listingTTLDays,
		},
	}, nil
}

// DSN возвращает строку подключения к PostgreSQL в формате libpq
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Address возвращает адрес сервера в формате host:port
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Address возвращает адрес Redis в формате host:port
func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
