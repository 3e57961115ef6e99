package main

import (
	"context"
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/registre/core"
	"github.com/trezcool/registre/core/analytics"
	"github.com/trezcool/registre/core/attendance"
	"github.com/trezcool/registre/core/auth"
	"github.com/trezcool/registre/core/student"
	"github.com/trezcool/registre/core/teacher"
	logsvc "github.com/trezcool/registre/services/logger"
	"github.com/trezcool/registre/services/spreadsheet"
	"github.com/trezcool/registre/storage"
)

func main() {
	std := log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()
	if err := conf.Validate(); err != nil {
		std.Fatal(err)
	}
	logger := logsvc.NewRollbarLogger(std, conf)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	stores, err := storage.Open(ctx, conf, logger)
	cancel()
	if err != nil {
		logger.Fatal("opening storage", err)
	}

	cli := newCommandLine(stores, conf, logger)
	cli.out = os.Stdout
	err = cli.run(os.Args)
	if cerr := stores.Close(); cerr != nil {
		logger.Error("closing storage", cerr)
	}
	logger.Close()
	if err != nil {
		if err != errHelp {
			std.Printf("\nerror: %s\n", err)
			var verr *core.ValidationError
			if errors.As(err, &verr) {
				for _, fld := range verr.Fields {
					std.Printf("  %s: %s\n", fld.Field, fld.Error)
				}
			}
		}
		os.Exit(1)
	}
}

func newCommandLine(stores *storage.Stores, conf *core.Config, logger core.Logger) *commandLine {
	facade := analytics.NewFacade(stores.Students, stores.Attendance)
	return &commandLine{
		logger:     logger,
		auth:       auth.NewGateway(stores.Teachers, stores.Owner, conf.Auth),
		teachers:   teacher.NewService(stores.Teachers, core.Passwords{Hash: conf.Auth.HashPasswords}),
		students:   student.NewService(stores.Students),
		attendance: attendance.NewService(stores.Attendance),
		analytics:  facade,
		exporter:   spreadsheet.NewExporter(facade, logger),
	}
}
