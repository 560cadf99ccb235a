//go:build js && wasm

package main

import (
	"fmt"
	"syscall/js"

	fitzones "github.com/lucasjlepore/fitzones"
)

func main() {
	js.Global().Set("timeInZones", js.FuncOf(timeInZones))
	select {}
}

// timeInZones(fileBytes Uint8Array, options {threshold_mps, zones: [{label, low, high}]})
func timeInZones(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return failure("expected arguments: fileBytes(Uint8Array), options(object)")
	}
	fileArg := args[0]
	if fileArg.IsUndefined() || fileArg.IsNull() || fileArg.Get("length").Int() == 0 {
		return failure("fit file bytes are required")
	}
	fileBytes := make([]byte, fileArg.Get("length").Int())
	if n := js.CopyBytesToGo(fileBytes, fileArg); n == 0 {
		return failure("failed to read FIT bytes from JS input")
	}

	var optsArg js.Value
	if len(args) > 1 {
		optsArg = args[1]
	}
	cfg := fitzones.DefaultConfig()
	if v, ok := getFloat(optsArg, "threshold_mps"); ok {
		cfg.MovingThresholdMPS = v
	}
	zones, ok, err := getZones(optsArg)
	if err != nil {
		return failure(fmt.Sprintf("zones: %v", err))
	}
	if ok {
		cfg.Zones = zones
	}
	if err := cfg.Zones.Validate(); err != nil {
		return failure(fmt.Sprintf("zones: %v", err))
	}

	activity, err := fitzones.DecodeBytes(fileBytes)
	if err != nil {
		return failure(err.Error())
	}
	analysis := fitzones.AnalyzeActivity(activity, cfg)

	zoneRows := make([]any, len(analysis.Result.Zones))
	for i, z := range analysis.Result.Zones {
		zoneRows[i] = map[string]any{
			"label":   z.Label,
			"seconds": z.Seconds,
			"clock":   fitzones.FormatClock(z.Seconds),
		}
	}
	return map[string]any{
		"ok":             true,
		"report":         fitzones.BuildZoneReport(analysis),
		"date":           fitzones.FormatDate(analysis.Summary.StartTime),
		"distance_km":    fitzones.FormatDistanceKM(analysis.Summary.DistanceMeters),
		"total_duration": fitzones.FormatClock(analysis.Summary.ElapsedSeconds),
		"moving_seconds": analysis.Result.MovingSeconds,
		"zones":          zoneRows,
	}
}

func failure(msg string) map[string]any {
	return map[string]any{"ok": false, "error": msg}
}

func getFloat(v js.Value, key string) (float64, bool) {
	if v.IsUndefined() || v.IsNull() {
		return 0, false
	}
	out := v.Get(key)
	if out.Type() != js.TypeNumber {
		return 0, false
	}
	return out.Float(), true
}

func getZones(v js.Value) (fitzones.ZoneTable, bool, error) {
	if v.IsUndefined() || v.IsNull() {
		return nil, false, nil
	}
	arr := v.Get("zones")
	if arr.Type() != js.TypeObject || arr.Get("length").Type() != js.TypeNumber || arr.Length() == 0 {
		return nil, false, nil
	}
	zones := make(fitzones.ZoneTable, 0, arr.Length())
	for i := 0; i < arr.Length(); i++ {
		z := arr.Index(i)
		if z.Type() != js.TypeObject {
			return nil, true, fmt.Errorf("zone %d is not an object", i+1)
		}
		label := z.Get("label")
		if label.Type() != js.TypeString {
			return nil, true, fmt.Errorf("zone %d: label must be a string", i+1)
		}
		low, high := z.Get("low"), z.Get("high")
		if low.Type() != js.TypeNumber || high.Type() != js.TypeNumber {
			return nil, true, fmt.Errorf("zone %q: low and high must be numbers", label.String())
		}
		zone, err := fitzones.NewZone(label.String(), low.Float(), high.Float())
		if err != nil {
			return nil, true, err
		}
		zones = append(zones, zone)
	}
	return zones, true, nil
}
