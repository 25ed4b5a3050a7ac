package notebook

import (
	"io"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"restmagic-cli/display"
	"restmagic-cli/runtime"
)

// Flag names of %rest and %rest_root, also used as configuration keys.
const (
	FlagVerbose      = "verbose"
	FlagQuiet        = "quiet"
	FlagInsecure     = "insecure"
	FlagCACert       = "cacert"
	FlagCert         = "cert"
	FlagKey          = "key"
	FlagProxy        = "proxy"
	FlagMaxRedirects = "max-redirects"
	FlagTimeout      = "timeout"
	FlagExtract      = "extract"
	FlagSubtype      = "subtype"
	FlagOutput       = "output"
)

// NewFlagSet returns the flags accepted by %rest and %rest_root.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	AddFlags(fs)
	return fs
}

// AddFlags registers the request flags on fs.
func AddFlags(fs *pflag.FlagSet) {
	fs.BoolP(FlagVerbose, "v", false, "dump the full HTTP exchange")
	fs.BoolP(FlagQuiet, "q", false, "do not print the response")
	fs.BoolP(FlagInsecure, "k", false, "disable SSL certificate verification")
	fs.String(FlagCACert, "", "PEM file of trusted CA certificates")
	fs.String(FlagCert, "", "PEM file of the client certificate")
	fs.String(FlagKey, "", "PEM file of the client certificate private key")
	fs.String(FlagProxy, "", "proxy URL for http and https")
	fs.Int(FlagMaxRedirects, runtime.DefaultMaxRedirects, "maximum number of redirects, 0 disables redirects")
	fs.Duration(FlagTimeout, runtime.DefaultTimeout, "timeout of the exchange, 0 disables it")
	fs.StringP(FlagExtract, "x", "", "JSONPath or XPath expression to extract from the response")
	fs.StringP(FlagSubtype, "t", "", "response content subtype for --extract: json, xml or html")
	fs.StringP(FlagOutput, "o", display.FormatJSON, "extraction output format: json or yaml")
}

func sendOptions(v *viper.Viper) runtime.SendOptions {
	return runtime.SendOptions{
		Insecure:     v.GetBool(FlagInsecure),
		CACert:       v.GetString(FlagCACert),
		Cert:         v.GetString(FlagCert),
		Key:          v.GetString(FlagKey),
		Proxy:        v.GetString(FlagProxy),
		MaxRedirects: v.GetInt(FlagMaxRedirects),
		Timeout:      v.GetDuration(FlagTimeout),
	}
}
