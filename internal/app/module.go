package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/lumabill/biller/internal/app/api/server"
	"github.com/lumabill/biller/internal/app/service/checkout"
	"github.com/lumabill/biller/internal/app/service/eventlog"
	"github.com/lumabill/biller/internal/app/service/notification"
	"github.com/lumabill/biller/internal/app/service/settlement"
	"github.com/lumabill/biller/internal/app/service/sweep"
	"github.com/lumabill/biller/internal/platform/db"
	"github.com/lumabill/biller/internal/platform/payout"
	"github.com/lumabill/biller/internal/platform/stripegw"
	"github.com/lumabill/biller/pkg/config"
	"github.com/lumabill/biller/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	server.Module,
	stripegw.Module,
	payout.Module,
	eventlog.Module,
	notification.Module,
	checkout.Module,
	settlement.Module,
	sweep.Module,
)
