package config

import (
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

func init() {
	// Load env from .env
	godotenv.Load()
}

// RunConfig carries everything one resolution run needs to know about its inputs,
// outputs and side channels. Flags in cmd tools override these values.
type RunConfig struct {
	Workers    int
	MemoizeEdi bool

	ReferencePath string
	EdiSheet      string
	BuildingSheet string
	EmidSheet     string
	LocationSheet string

	SourceAPath  string
	SourceASheet string
	SourceBPath  string
	SourceBSheet string

	OutputPath string

	Persist      bool
	PublishTopic string
	LockTTL      time.Duration
}

func LoadRunConfig() RunConfig {
	return RunConfig{
		Workers:    intFromEnv("RESOLVER_WORKERS", runtime.NumCPU()),
		MemoizeEdi: boolFromEnv("RESOLVER_MEMOIZE_EDI", true),

		ReferencePath: stringFromEnv("REFERENCE_WORKBOOK", ""),
		EdiSheet:      stringFromEnv("REFERENCE_SHEET_EDI", "EDI"),
		BuildingSheet: stringFromEnv("REFERENCE_SHEET_BUILDING", "Buildings"),
		EmidSheet:     stringFromEnv("REFERENCE_SHEET_EMID", "EMID"),
		LocationSheet: stringFromEnv("REFERENCE_SHEET_LOCATION", "Location Lookup"),

		SourceAPath:  stringFromEnv("SOURCE_A_PATH", ""),
		SourceASheet: stringFromEnv("SOURCE_A_SHEET", "Sheet1"),
		SourceBPath:  stringFromEnv("SOURCE_B_PATH", ""),
		SourceBSheet: stringFromEnv("SOURCE_B_SHEET", "Sheet1"),

		OutputPath: stringFromEnv("OUTPUT_PATH", "resolved.xlsx"),

		Persist:      boolFromEnv("RESOLVER_PERSIST", false),
		PublishTopic: stringFromEnv("RESOLVER_PUBLISH_TOPIC", ""),
		LockTTL:      time.Duration(intFromEnv("RESOLVER_LOCK_TTL_SECONDS", 600)) * time.Second,
	}
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolFromEnv(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return isTruthy(v)
}

func stringFromEnv(key string, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}
