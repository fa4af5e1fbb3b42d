package services

import (
	"fmt"
	"time"
)

const (
	CONFIG_SURVEY_START_TIME                = "SURVEY_START_TIME"
	CONFIG_SURVEY_END_TIME                  = "SURVEY_END_TIME"
	CONFIG_SUBMISSION_RATE_LIMIT_PER_MINUTE = "SUBMISSION_RATE_LIMIT_PER_MINUTE"
	CONFIG_CRONJOB_TIME_CLEANUP             = "CRONJOB_TIME_CLEANUP"

	SUBMISSION_RATE_LIMIT_PER_MINUTE = 30
	CRONJOB_TIME_CLEANUP_DEFAULT     = "@hourly"
	ORPHAN_UPLOAD_MIN_AGE            = time.Hour

	DEFAULT_FILE_FORMAT = ".pdf"
	FILE_QUESTION_NAME  = "certificates"

	NOTIFY_TIMEOUT = 10 * time.Second

	CACHE_TTL_1_MIN   = 1 * time.Minute
	CACHE_TTL_5_MINS  = 5 * time.Minute
	CACHE_TTL_15_MINS = 15 * time.Minute
)

func LockKeySeedQuestions() string {
	return "lock:seed-questions"
}

func DBKeyQuestions() string {
	return "questions:all"
}

func DBKeyConfig(key string) string {
	return fmt.Sprintf("config:%s", key)
}

func LimitKeySubmission(clientKey string) string {
	return fmt.Sprintf("limit:submission:%s", clientKey)
}
