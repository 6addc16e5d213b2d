package services

import (
	"minventory/internal/logging"
	"minventory/internal/server/repositories/repotest"
)

func newFakeRepos() *repotest.Repos { return repotest.NewRepos() }

func discardLogger() logging.Logger { return logging.NewNopLogger() }
