package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/mmdatafocus/dimension_resolver/appctx"
	"github.com/mmdatafocus/dimension_resolver/config"
	"github.com/mmdatafocus/dimension_resolver/models"
	"github.com/mmdatafocus/dimension_resolver/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const runLockType = "resolution-run"

var ErrRunAlreadyPersisted = errors.New("run already persisted")

func isDuplicateKeyErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// PersistRun stores the run under a redis lock on lockKey so two runs over the same
// inputs never write at the same time.
func PersistRun(ctx context.Context, logger *logrus.Logger, db *gorm.DB, result *RunResult, lockKey string, lockTTL time.Duration) error {
	release, err := utils.ObtainRunLock(ctx, lockKey, runLockType, lockTTL, "persistRun.go", "PersistRun")
	if err != nil {
		return err
	}
	defer release()

	operator, _ := appctx.GetOperator(ctx)
	run, err := models.NewResolutionRun(result.RunId, operator, result.StartedAt, result.FinishedAt, result.Report.Summary)
	if err != nil {
		config.LogError(logger, "persistRun.go", "PersistRun", "NewResolutionRun", result.RunId, err)
		return err
	}
	err = models.SaveRun(ctx, db, run, result.Lines, result.Report.Conflicts, result.Report.Rejected)
	if isDuplicateKeyErr(err) {
		return fmt.Errorf("%w: %s", ErrRunAlreadyPersisted, result.RunId)
	}
	if err != nil {
		config.LogError(logger, "persistRun.go", "PersistRun", "SaveRun", result.RunId, err)
		return err
	}
	return nil
}

// RunReportMessage builds the notification payload for a finished run.
func RunReportMessage(result *RunResult, persisted bool) (config.RunReportMessage, error) {
	summary, err := json.Marshal(result.Report.Summary)
	if err != nil {
		return config.RunReportMessage{}, err
	}
	return config.RunReportMessage{
		RunId:       result.RunId,
		StartedAt:   result.StartedAt,
		FinishedAt:  result.FinishedAt,
		Summary:     summary,
		OutputPath:  result.OutputPath,
		Persisted:   persisted,
		ConflictCnt: len(result.Report.Conflicts),
	}, nil
}

func PublishRun(ctx context.Context, logger *logrus.Logger, topic string, result *RunResult, persisted bool) error {
	msg, err := RunReportMessage(result, persisted)
	if err != nil {
		config.LogError(logger, "persistRun.go", "PublishRun", "RunReportMessage", result.RunId, err)
		return err
	}
	id, err := config.PublishRunReport(ctx, topic, msg)
	if err != nil {
		config.LogError(logger, "persistRun.go", "PublishRun", "PublishRunReport", topic, err)
		return err
	}
	config.LogInfo(logger, "persistRun.go", "PublishRun", "run report published", map[string]string{"message_id": id, "topic": topic})
	return nil
}
