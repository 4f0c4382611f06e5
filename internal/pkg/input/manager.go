package input

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gethiox/stickd/internal/pkg/logger"
	"go.uber.org/zap"
)

// Joysticks filters handlers down to joysticks having an event handler.
func Joysticks(infos []DeviceInfo) []DeviceInfo {
	var joysticks []DeviceInfo
	for _, info := range infos {
		if info.HandlerType() != DI_TYPE_JOYSTICK || info.Event() == "" {
			continue
		}
		joysticks = append(joysticks, info)
	}
	return joysticks
}

// Match returns first joystick which name contains given fragment, case-insensitive.
// Empty fragment matches any joystick.
func Match(infos []DeviceInfo, name string) (DeviceInfo, bool) {
	name = strings.ToLower(name)
	for _, info := range Joysticks(infos) {
		if strings.Contains(strings.ToLower(info.Name), name) {
			return info, true
		}
	}
	return DeviceInfo{}, false
}

// WaitForJoystick polls the system for matching joystick until it appears or ctx is done.
func WaitForJoystick(ctx context.Context, name string, rate time.Duration) (DeviceInfo, error) {
	var announced bool
	for {
		infos, err := GetHandlers()
		if err != nil {
			return DeviceInfo{}, err
		}

		info, ok := Match(infos, name)
		if ok {
			log.Info("joystick found", zap.String("device_name", info.Name), zap.String("handler_event", info.Event()), logger.Info)
			return info, nil
		}

		if !announced {
			log.Info(fmt.Sprintf("waiting for joystick matching \"%s\"", name), logger.Info)
			announced = true
		}

		select {
		case <-ctx.Done():
			return DeviceInfo{}, ctx.Err()
		case <-time.After(rate):
		}
	}
}
