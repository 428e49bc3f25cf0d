package ingest

import (
	"context"
	"testing"

	"github.com/angelmondragon/salesdesk-backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromConfig_LocalSourceWithoutRedis(t *testing.T) {
	client := newTestClient(t)
	path := writeCSV(t, csvContent(validRow(1), validRow(2)))
	cfg := &config.Config{Ingest: config.IngestConfig{Source: path, MaxRows: 100}}

	imp, err := FromConfig(context.Background(), cfg, client, nil, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, imp.lock)
	assert.Equal(t, 500, imp.cfg.BatchSize)

	res, err := imp.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
}

func TestFromConfig_RequiresSource(t *testing.T) {
	_, err := FromConfig(context.Background(), &config.Config{}, newTestClient(t), nil, nil, nil)
	require.Error(t, err)
}
