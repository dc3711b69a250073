// run_sync: 동기화 잡을 1회 실행하는 운영 도구.
// 스케줄러를 띄우지 않고 지정한 잡만 실행한 뒤 종료한다.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/kapu/handheld-deals-go/internal/app"
	"github.com/kapu/handheld-deals-go/internal/config"
	"github.com/kapu/handheld-deals-go/internal/constants"
	"github.com/kapu/handheld-deals-go/internal/service/syncjob"
)

func main() {
	jobFlag := flag.String("job", "", "sync job to run (deals|estimator|staleness|metadata|compat)")
	flag.Parse()

	if *jobFlag == "" {
		fmt.Fprintln(os.Stderr, "Usage: run_sync -job <deals|estimator|staleness|metadata|compat>")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := app.ProvideLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	buildCtx, buildCancel := context.WithTimeout(context.Background(), constants.AppTimeout.Build)
	runtime, err := app.BuildRuntime(buildCtx, cfg, logger)
	buildCancel()
	if err != nil {
		logger.Error("runtime_build_failed", "error", err)
		os.Exit(1)
	}
	defer runtime.Close()

	jobName := syncjob.JobName(strings.ToLower(strings.TrimSpace(*jobFlag)))
	if err := runtime.Scheduler.Trigger(context.Background(), jobName); err != nil {
		logger.Error("sync_job_run_failed", "job", string(jobName), "error", err)
		os.Exit(1)
	}
}
