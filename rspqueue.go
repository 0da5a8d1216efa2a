// This file is part of rspqueue.
//
// rspqueue is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// rspqueue is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with rspqueue.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/bradleyjkemp/memviz"
	"github.com/jetsetilly/rspqueue/logger"
	"github.com/jetsetilly/rspqueue/modalflag"
	"github.com/jetsetilly/rspqueue/monitor"
	"github.com/jetsetilly/rspqueue/statsview"
	"github.com/jetsetilly/rspqueue/trace"
	"github.com/jetsetilly/rspqueue/version"
	"github.com/spf13/afero"
)

// exit values returned by launch()
const (
	exitParse = 10
	exitMode  = 20
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(launch(ctx, afero.NewOsFs(), os.Args[1:], os.Stdout))
}

// flags common to every mode that runs a script
type common struct {
	log        *bool
	diagnostic *bool
	stats      *bool
	bmp        *string
	prefs      *string
	zeroSeed   *bool
}

func addCommon(md *modalflag.Modes) common {
	return common{
		log:        md.AddBool("log", false, "echo debugging log to stdout"),
		diagnostic: md.AddBool("diagnostic", false, "check overlay and command ids and halt on invalid values"),
		stats:      md.AddBool("stats", false, "run stats server (if available)"),
		bmp:        md.AddString("bmp", "", "save the rasterizer framebuffer to a BMP file"),
		prefs:      md.AddString("prefs", "", "preference overrides. key::value pairs separated by semicolons"),
		zeroSeed:   md.AddBool("zeroseed", false, "script rand() produces the same numbers on every run"),
	}
}

func launch(ctx context.Context, fs afero.Fs, args []string, output io.Writer) int {
	md := &modalflag.Modes{Output: output}
	md.NewArgs(args)
	md.NewMode()
	md.AddSubModes("RUN", "STEP", "TRACE", "DUMP")
	ver := md.AddBool("version", false, "print version information")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		return 0
	case modalflag.ParseError:
		fmt.Fprintf(output, "* error: %v\n", err)
		return exitParse
	}

	if *ver {
		v, r, _ := version.Version()
		fmt.Fprintf(output, "%s %s (%s)\n", version.ApplicationName, v, r)
		return 0
	}

	switch md.Mode() {
	case "RUN":
		err = run(fs, md, output)
	case "STEP":
		err = step(ctx, fs, md, output)
	case "TRACE":
		err = traceMode(fs, md, output)
	case "DUMP":
		err = dump(fs, md, output)
	}

	if err != nil {
		fmt.Fprintf(output, "* error in %s mode: %s\n", md.String(), err)
		return exitMode
	}

	return 0
}

// prepare parses the flags for the mode and creates a session for the script
// named on the command line. a nil session with a nil error means the help
// message was printed.
func prepare(fs afero.Fs, md *modalflag.Modes, output io.Writer, cmn common) (*session, error) {
	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return nil, err
	}

	if *cmn.log {
		logger.SetEcho(logger.NewColorizer(output))
	} else {
		logger.SetEcho(nil)
	}

	if *cmn.stats {
		statsview.Launch(output)
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return nil, fmt.Errorf("script required for %s mode", md)
	case 1:
	default:
		return nil, fmt.Errorf("too many arguments for %s mode", md)
	}

	ses, err := newSession(fs, *cmn.diagnostic, *cmn.prefs)
	if err != nil {
		return nil, err
	}
	ses.scr.SetZeroSeed(*cmn.zeroSeed)

	return ses, nil
}

// complete finishes a session that has run its script.
func complete(fs afero.Fs, ses *session, output io.Writer, cmn common) error {
	if err := ses.finish(); err != nil {
		return err
	}
	ses.summary(output)

	if *cmn.bmp != "" {
		if err := ses.writeFramebuffer(fs, *cmn.bmp); err != nil {
			return err
		}
	}

	return nil
}

func run(fs afero.Fs, md *modalflag.Modes, output io.Writer) error {
	md.NewMode()
	cmn := addCommon(md)

	ses, err := prepare(fs, md, output, cmn)
	if err != nil || ses == nil {
		return err
	}
	defer ses.close()

	ses.synchronous()
	if err := ses.scr.Load(fs, md.GetArg(0)); err != nil {
		return err
	}

	return complete(fs, ses, output, cmn)
}

func step(ctx context.Context, fs afero.Fs, md *modalflag.Modes, output io.Writer) error {
	md.NewMode()
	cmn := addCommon(md)

	ses, err := prepare(fs, md, output, cmn)
	if err != nil || ses == nil {
		return err
	}
	defer ses.close()

	var con monitor.Console
	term, err := monitor.NewTerminal(os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintf(output, "! %v: keys will only be seen after return\n", err)
	} else {
		defer term.CleanUp()
		con = term
	}

	mon := monitor.NewMonitor(ses.eng, con, output, nil)

	// the script writes commands on its own goroutine. the host side of the
	// queue waits on the signals whenever it needs the engine to make
	// progress, which in this mode happens one key press at a time. the
	// run() script function must not be used in this mode
	done := make(chan error, 1)
	go func() {
		done <- ses.scr.Load(fs, md.GetArg(0))
	}()

	if err := mon.Loop(ctx, os.Stdin); err != nil {
		return err
	}

	select {
	case err := <-done:
		if err != nil {
			return err
		}
		ses.synchronous()
		return complete(fs, ses, output, cmn)
	default:
		fmt.Fprintln(output, "! script has not completed")
	}

	return nil
}

func traceMode(fs afero.Fs, md *modalflag.Modes, output io.Writer) error {
	md.NewMode()
	cmn := addCommon(md)
	out := md.AddString("out", "rspq.pcap", "capture file to write")
	read := md.AddBool("read", false, "argument is a capture file to print")

	ses, err := prepare(fs, md, output, cmn)
	if err != nil || ses == nil {
		return err
	}
	defer ses.close()

	if *read {
		return printCapture(fs, md.GetArg(0), output)
	}

	f, err := fs.Create(*out)
	if err != nil {
		return err
	}
	defer f.Close()

	tw, err := trace.NewWriter(f)
	if err != nil {
		return err
	}
	ses.eng.SetTracer(tw)

	ses.synchronous()
	if err := ses.scr.Load(fs, md.GetArg(0)); err != nil {
		return err
	}
	if err := complete(fs, ses, output, cmn); err != nil {
		return err
	}
	if err := tw.Err(); err != nil {
		return err
	}

	fmt.Fprintf(output, "%d commands written to %s\n", tw.Count(), *out)

	return nil
}

func printCapture(fs afero.Fs, path string, output io.Writer) error {
	f, err := fs.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	records, err := trace.ReadAll(f)
	if err != nil {
		return err
	}

	for _, r := range records {
		fmt.Fprintf(output, "%s %s slot %d: %08x (%d bytes)\n", r.Stream, r.Position, r.Slot, r.Header(), len(r.Command))
	}

	return nil
}

func dump(fs afero.Fs, md *modalflag.Modes, output io.Writer) error {
	md.NewMode()
	cmn := addCommon(md)
	out := md.AddString("out", "", "file to write the graphviz output to. stdout if empty")

	ses, err := prepare(fs, md, output, cmn)
	if err != nil || ses == nil {
		return err
	}
	defer ses.close()

	ses.synchronous()
	if err := ses.scr.Load(fs, md.GetArg(0)); err != nil {
		return err
	}
	if err := ses.finish(); err != nil {
		return err
	}

	w := output
	if *out != "" {
		f, err := fs.Create(*out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	memviz.Map(w, ses.snapshot())

	return nil
}
