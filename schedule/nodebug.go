//go:build !debug

package schedule

func debugLog(string, ...any) {}
