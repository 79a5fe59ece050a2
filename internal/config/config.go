package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Database struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

type Kafka struct {
	Brokers    []string
	Topic      string
	AuditTopic string
}

type Courier struct {
	BaseURL  string
	Username string
	Password string
	// OriginCity is the fixed dispatch city for every booked parcel.
	OriginCity string
	// LocalAreaNames are the name variants of the local service area;
	// destinations matching any of them do not qualify for courier delivery.
	LocalAreaNames []string
	ServiceCode    string
}

type Config struct {
	HTTPPort string
	DB       Database
	Kafka    Kafka
	Courier  Courier
}

func Load() Config {
	loadEnv()

	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))

	return Config{
		HTTPPort: getEnv("HTTP_PORT", "9000"),
		DB: Database{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			Name:     os.Getenv("POSTGRES_DB"),
		},
		Kafka: Kafka{
			Brokers:    strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			Topic:      getEnv("KAFKA_TOPIC", "fulfillment_events"),
			AuditTopic: getEnv("KAFKA_AUDIT_TOPIC", "audit_logs"),
		},
		Courier: Courier{
			BaseURL:        getEnv("COURIER_BASE_URL", "https://api.courier.example.com"),
			Username:       os.Getenv("COURIER_USERNAME"),
			Password:       os.Getenv("COURIER_PASSWORD"),
			OriginCity:     getEnv("COURIER_ORIGIN_CITY", "Karachi"),
			LocalAreaNames: strings.Split(getEnv("COURIER_LOCAL_AREA", "karachi,khi"), ","),
			ServiceCode:    getEnv("COURIER_SERVICE_CODE", "OVERNIGHT"),
		},
	}
}

func loadEnv() {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal("Error getting working directory:", err)
	}

	possiblePaths := []string{
		filepath.Join(wd, ".env"),
		filepath.Join(wd, "..", ".env"),
		filepath.Join(wd, "..", "..", ".env"),
	}

	for _, envPath := range possiblePaths {
		if err := godotenv.Load(envPath); err == nil {
			log.Printf("Loaded environment variables from %s", envPath)
			return
		}
	}

	log.Println("No .env file found, relying on process environment")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
