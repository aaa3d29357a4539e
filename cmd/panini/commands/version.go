package commands

import (
	"fmt"

	"git.home.luguber.info/inful/panini/internal/version"
)

// VersionCmd implements the 'version' command.
type VersionCmd struct{}

func (VersionCmd) Run(_ *Global, _ *CLI) error {
	fmt.Printf("panini %s\ncommit: %s\nbuilt:  %s\n", version.Version, version.GitCommit, version.BuildTime)
	return nil
}
