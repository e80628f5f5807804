package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner shown before interactive runs.
func PrintBanner(version string) {
	p := termenv.ColorProfile()
	// Brass-to-crimson gradient.
	s1 := termenv.String(` __      ____ _ _ __ ___ ___  _   _ _ __   ___(_) |`).Foreground(p.Color("#fbbf24"))
	s2 := termenv.String(` \ \ /\ / / _' | '__/ __/ _ \| | | | '_ \ / __| | |`).Foreground(p.Color("#f59e0b"))
	s3 := termenv.String(`  \ V  V / (_| | | | (_| (_) | |_| | | | | (__| | |`).Foreground(p.Color("#f97316"))
	s4 := termenv.String(`   \_/\_/ \__,_|_|  \___\___/ \__,_|_| |_|\___|_|_|`).Foreground(p.Color("#ef4444"))
	ver := termenv.String("   v" + version).Foreground(p.Color("#9ca3af")).Faint()

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(ver)
	fmt.Println()
}
