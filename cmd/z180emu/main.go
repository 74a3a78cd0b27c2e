// main.go - CLI driver for the Z180 SC126/SC131 core.
//
// Grounded on the teacher's main.go: a flag.NewFlagSet with
// flag.ContinueOnError, output discarded until a custom Usage prints it,
// and an explicit os.Exit(1) on parse or setup failure.

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.design/x/clipboard"

	z180emu "github.com/sc126-romwbw/z180emu"
)

func usage(fs *flag.FlagSet) func() {
	return func() {
		fs.SetOutput(os.Stdout)
		fmt.Println("Usage: z180emu -rom romfile [-snapshot ramfile] [-burst n] [-rate hz] [-reset] [-paste-text] [-send-byte 0xNN]")
		fs.PrintDefaults()
	}
}

func main() {
	var (
		romPath      string
		snapshotPath string
		burst        int
		rateHz       int
		doReset      bool
		pasteText    bool
		sendByteHex  string
	)

	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&romPath, "rom", "", "path to the ROM image to load")
	fs.StringVar(&snapshotPath, "snapshot", "", "path to the RAM snapshot file to load and periodically save")
	fs.IntVar(&burst, "burst", 2000, "CPU steps executed per host tick")
	fs.IntVar(&rateHz, "rate", 100, "host ticks per second")
	fs.BoolVar(&doReset, "reset", false, "reset the core before running (RAM contents survive)")
	fs.BoolVar(&pasteText, "paste-text", false, "inject the system clipboard's text into the console input stream, then exit")
	fs.StringVar(&sendByteHex, "send-byte", "", "send a single hex byte (e.g. 0x1A) to the console input stream, then exit")
	fs.Usage = usage(fs)

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if romPath == "" {
		fmt.Println("Error: -rom is required")
		fs.Usage()
		os.Exit(1)
	}

	rom, err := z180emu.LoadROMFile(romPath)
	if err != nil {
		fmt.Printf("Error loading ROM: %v\n", err)
		os.Exit(1)
	}

	ramSnapshot := z180emu.LoadRAMSnapshot(snapshotPath)

	var store z180emu.SnapshotStore
	if snapshotPath != "" {
		store = &z180emu.FileSnapshotStore{Path: snapshotPath}
	}

	board := z180emu.NewMotherboard("sc126-0", rom, ramSnapshot, store)
	if doReset {
		board.Reset()
	}

	if pasteText || sendByteHex != "" {
		runOneShot(board, pasteText, sendByteHex)
		board.Shutdown()
		return
	}

	host := z180emu.NewTerminalHost(board)
	board.SetConsoleSink(host)
	host.Start()
	defer host.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second / time.Duration(rateHz))
	defer ticker.Stop()

	for {
		select {
		case <-sigCh:
			board.Shutdown()
			return
		case <-ticker.C:
			board.RunBurst(burst)
		}
	}
}

// runOneShot handles the -paste-text and -send-byte helper modes: each
// injects bytes into the board's input queue and exits without starting an
// interactive terminal session.
func runOneShot(board *z180emu.Motherboard, pasteText bool, sendByteHex string) {
	if pasteText {
		if err := clipboard.Init(); err != nil {
			fmt.Printf("Error: clipboard unavailable: %v\n", err)
			os.Exit(1)
		}
		text := string(clipboard.Read(clipboard.FmtText))
		host := z180emu.NewTerminalHost(board)
		host.PasteText(text)
	}
	if sendByteHex != "" {
		var b byte
		if _, err := fmt.Sscanf(sendByteHex, "0x%x", &b); err != nil {
			if _, err := fmt.Sscanf(sendByteHex, "%d", &b); err != nil {
				fmt.Printf("Error: invalid -send-byte value %q\n", sendByteHex)
				os.Exit(1)
			}
		}
		board.EnqueueInput(b)
	}
	board.RunBurst(1)
}
