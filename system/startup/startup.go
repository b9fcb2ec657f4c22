package startup

import (
	"fmt"
	"os"
	"path/filepath"
)

const servicePath = "/etc/systemd/system/gobmr.service"

// InstallService writes a systemd unit that runs this binary at boot with
// the given config file. The caller still has to `systemctl enable gobmr`.
func InstallService(configFile string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable path: %w", err)
	}
	absConfig, err := filepath.Abs(configFile)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}

	unit := fmt.Sprintf(`[Unit]
Description=BMR HC64 heating controller bridge
After=network-online.target
Wants=network-online.target

[Service]
Type=simple
ExecStart=%s -config-file %s
WorkingDirectory=%s
Restart=on-failure
RestartSec=5s

[Install]
WantedBy=multi-user.target
`, exe, absConfig, filepath.Dir(absConfig))

	return os.WriteFile(servicePath, []byte(unit), 0644)
}
