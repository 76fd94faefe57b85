package handler

import (
	"github.com/chamathjayasekara99/relaychat/internal/app/relay"
	"github.com/chamathjayasekara99/relaychat/internal/configs"
)

// AppDeps bundles the dependencies shared by all HTTP handlers.
type AppDeps struct {
	Relay  *relay.Server
	Config *configs.AppConfig
}
