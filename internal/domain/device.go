// Package domain: 핸드헬드 딜 서비스의 핵심 도메인 타입과 내장 기기 레지스트리를 정의한다.
package domain

import (
	_ "embed"
	"fmt"

	"github.com/goccy/go-json"
)

//go:embed data/devices.json
var devicesJSON []byte

// EstimatorProfile: 기기별 배터리 추정 파라미터
type EstimatorProfile struct {
	BaselineHours       float64 `json:"baseline_hours"`
	ClampMin            float64 `json:"clamp_min"`
	ClampMax            float64 `json:"clamp_max"`
	LowDrainMinHours    float64 `json:"low_drain_min_hours"`
	MediumDrainMinHours float64 `json:"medium_drain_min_hours"`
	FlatBonus           float64 `json:"flat_bonus"`
	ActionPenalty       float64 `json:"action_penalty"`
}

// Device: 지원 핸드헬드 기기
type Device struct {
	ID                     string           `json:"id"`
	Name                   string           `json:"name"`
	Manufacturer           string           `json:"manufacturer"`
	BatteryWh              float64          `json:"battery_wh"`
	HasVerificationProgram bool             `json:"has_verification_program"`
	EstimatorProfile       EstimatorProfile `json:"estimator_profile"`
}

var (
	devices   []Device
	deviceMap map[string]Device
)

func init() {
	if err := json.Unmarshal(devicesJSON, &devices); err != nil {
		panic(fmt.Sprintf("failed to parse embedded devices.json: %v", err))
	}
	deviceMap = make(map[string]Device, len(devices))
	for _, d := range devices {
		deviceMap[d.ID] = d
	}
}

// Devices: 지원하는 모든 기기를 정의된 순서대로 반환합니다.
func Devices() []Device {
	out := make([]Device, len(devices))
	copy(out, devices)
	return out
}

// DeviceByID: 기기 ID로 기기를 조회한다. 미지원 ID면 ok=false.
func DeviceByID(id string) (Device, bool) {
	d, ok := deviceMap[id]
	return d, ok
}

// DeviceIDs: 지원 기기 ID 목록을 반환한다.
func DeviceIDs() []string {
	ids := make([]string, 0, len(devices))
	for _, d := range devices {
		ids = append(ids, d.ID)
	}
	return ids
}

// IsSupportedDevice: 지원 기기 여부를 확인합니다.
func IsSupportedDevice(id string) bool {
	_, ok := deviceMap[id]
	return ok
}
