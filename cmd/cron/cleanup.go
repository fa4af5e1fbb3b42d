package main

import (
	"context"
	"time"

	"survey/internal/pkg/logging"
	"survey/internal/services"

	"github.com/m-mizutani/goerr/v2"
	"github.com/robfig/cron/v3"
)

type CleanupJob struct {
	serviceCertificate *services.ServiceCertificate
	serviceConfig      *services.ServiceConfig
	ctx                context.Context
}

func NewCleanupJob(serviceCertificate *services.ServiceCertificate, serviceConfig *services.ServiceConfig) *CleanupJob {
	return &CleanupJob{
		serviceCertificate: serviceCertificate,
		serviceConfig:      serviceConfig,
		ctx:                context.Background(),
	}
}

func (j *CleanupJob) Start(ctx context.Context, cronRunner *cron.Cron) error {
	j.ctx = ctx

	timeline, err := j.serviceConfig.GetStringConfig(ctx, services.CONFIG_CRONJOB_TIME_CLEANUP, services.CRONJOB_TIME_CLEANUP_DEFAULT)
	if err != nil {
		return err
	}
	if timeline == "" {
		timeline = services.CRONJOB_TIME_CLEANUP_DEFAULT
	}

	_, err = cronRunner.AddFunc(timeline, j.runScheduledTask)
	if err != nil {
		return goerr.Wrap(err, "invalid cleanup schedule", goerr.V("cron", timeline))
	}

	logging.Default().Info("cleanup cronjob scheduled", "cron", timeline)
	return nil
}

func (j *CleanupJob) runScheduledTask() {
	if _, err := j.Run(j.ctx); err != nil {
		logging.Default().Error("cleanup failed", "error", err)
	}
}

// Run removes stored uploads older than ORPHAN_UPLOAD_MIN_AGE that no certificate references.
func (j *CleanupJob) Run(ctx context.Context) (int, error) {
	logging.Default().Info("start cleaning orphan uploads")
	removed, err := j.serviceCertificate.CleanupOrphans(ctx, time.Now(), services.ORPHAN_UPLOAD_MIN_AGE)
	if err != nil {
		return removed, err
	}

	logging.Default().Info("orphan uploads cleaned", "removed", removed)
	return removed, nil
}
