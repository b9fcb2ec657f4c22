package env

import (
	"github.com/gobmr/gobmr/internal/config"
)

var Cfg *config.Config
