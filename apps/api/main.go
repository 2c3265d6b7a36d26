package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"net/mail"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/robfig/cron/v3"

	echoapi "github.com/trezcool/chama/apps/api/echo"
	"github.com/trezcool/chama/core"
	"github.com/trezcool/chama/core/contact"
	"github.com/trezcool/chama/core/event"
	"github.com/trezcool/chama/core/member"
	"github.com/trezcool/chama/core/post"
	"github.com/trezcool/chama/core/user"
	emailsvc "github.com/trezcool/chama/services/email"
	logsvc "github.com/trezcool/chama/services/logger"
	"github.com/trezcool/chama/storage/database"
	sqlxrepos "github.com/trezcool/chama/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error(fmt.Sprintf("closing database: %v", err), err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc, conf)
	mbrSvc := member.NewService(sqlxrepos.NewMemberRepository(db))
	evtSvc := event.NewService(sqlxrepos.NewEventRepository(db))
	pstSvc := post.NewService(sqlxrepos.NewPostRepository(db))
	ctSvc := contact.NewService(sqlxrepos.NewContactRepository(db), mailSvc, conf)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	member.InitValidators(validate, translator)

	core.ParseEmailTemplates(conf, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start Events Digest Cron

	digest := event.NewDigest(evtSvc, &memberRecipients{users: usrSvc}, mailSvc, logger)
	crn := cron.New()
	if _, err = crn.AddJob(conf.EventDigestSchedule, digest); err != nil {
		logger.Fatal(fmt.Sprintf("scheduling events digest: %v", err), err)
	}
	crn.Start()
	defer crn.Stop()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			UserSvc:    usrSvc,
			MemberSvc:  mbrSvc,
			EventSvc:   evtSvc,
			PostSvc:    pstSvc,
			ContactSvc: ctSvc,
			Validate:   validate,
			Translator: translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return sqlx.NewDb(db, conf.Database.Engine), nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// memberRecipients feeds the events digest with all active account emails.
type memberRecipients struct {
	users user.ServiceInterface
}

func (r *memberRecipients) Recipients(ctx context.Context) ([]mail.Address, error) {
	active := true
	users, err := r.users.Query(ctx, &user.QueryFilter{IsActive: &active}, nil)
	if err != nil {
		return nil, err
	}
	recips := make([]mail.Address, 0, len(users))
	for _, usr := range users {
		if usr.Email != "" {
			recips = append(recips, mail.Address{Name: usr.Name, Address: usr.Email})
		}
	}
	return recips, nil
}
