package app

// Config is the daemon command line, parsed with go-arg.
type Config struct {
	Listen       string `arg:"-l,--listen" default:"127.0.0.1" help:"network interface to bind to"`
	Port         int    `arg:"-p,--port" default:"3334" help:"port to listen on, 0 picks a random high port"`
	AuthRequired bool   `arg:"-a,--auth" default:"false" help:"require NIP-42 authentication before servicing REQ"`
	Name         string `arg:"-n,--name" default:"relayr" help:"name of relay for NIP-11"`
	Description  string `arg:"-d,--description" help:"description of relay for NIP-11"`
	LogLevel     string `arg:"--loglevel" default:"info" help:"set log level [off,fatal,error,warn,info,debug,trace] (can also use GODEBUG environment variable)"`
}
