package main

import (
	"os"

	kingpin "gopkg.in/alecthomas/kingpin.v2"
)

var version = "dev"

var (
	app = kingpin.New(
		"ipcensus",
		"Fast IPv4 to customer/service ownership lookup service.")

	debug = app.Flag("debug", "Run in debug mode.").
		Short('d').
		Envar("IPCENSUS_DEBUG").
		Bool()
	configFile = app.Arg("config-path", "Path to the config.").
			Required().
			File()

	exportCommand = app.Command("export",
		"Fetch upstream data and publish a snapshot.")
	exportOnce = exportCommand.Flag("once",
		"Run a single export and exit instead of running daily.").Bool()

	serveCommand = app.Command("serve",
		"Serve IPv4 ownership lookups over HTTP.")
)

func main() {
	app.Version(version)

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	conf, err := parseConfig(*configFile)
	if err != nil {
		kingpin.Fatalf("cannot parse config: %v", err)
	}

	log := newLogger(*debug)

	rootCtx, cancel := makeRootContext()
	defer cancel()

	switch command {
	case exportCommand.FullCommand():
		err = runExport(rootCtx, conf, log, *exportOnce)
	case serveCommand.FullCommand():
		err = runServe(rootCtx, conf, log)
	}

	if err != nil {
		kingpin.Fatalf("%v", err)
	}
}
