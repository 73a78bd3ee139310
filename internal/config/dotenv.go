package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads variables from the given files (".env" when none are
// given) without overriding values already present in the environment.
// Production deployments (APP_ENV=PROD) never read dotenv files. A missing
// file is not an error.
func LoadDotEnv(files ...string) error {
	if strings.EqualFold(strings.TrimSpace(os.Getenv("APP_ENV")), "PROD") {
		return nil
	}
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}
