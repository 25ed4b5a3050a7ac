package runtime

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"restmagic-cli/parser"
)

// EnvironmentFileName is the default name for the environments file, in
// the format of the inteliJ http client.
const EnvironmentFileName = "rest-client.env.json"

// EnvFile is a helper type to parse the environments file into.
type EnvFile map[string]map[string]string

// ReadEnvironment returns the variables of the named environment in file.
// It returns nil if name is empty or the file does not exist.
func ReadEnvironment(file, name string) (parser.Namespace, error) {
	if name == "" {
		return nil, nil
	}
	if file == "" {
		file = EnvironmentFileName
	}

	f, err := os.Open(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var fileStruct EnvFile
	if err := json.NewDecoder(f).Decode(&fileStruct); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", file)
	}

	if env, ok := fileStruct[name]; ok {
		return parser.Namespace(env), nil
	}
	return nil, fmt.Errorf("environment %s does not exist in %s", name, file)
}

// ReadVariables loads dotenv files, later files overriding earlier ones.
func ReadVariables(files ...string) (parser.Namespace, error) {
	ns := make(parser.Namespace)
	for _, file := range files {
		vars, err := godotenv.Read(file)
		if err != nil {
			return nil, errors.Wrapf(err, "reading variables from %s", file)
		}
		for k, v := range vars {
			ns[k] = v
		}
	}
	return ns, nil
}
