package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storage_feasibility/pkg/config"
	"storage_feasibility/pkg/core/assumption"
)

func testOptions() options {
	return options{
		dataDir:     "../../data",
		attrition:   "attrition.hjson",
		seasonality: "seasonality.json",
		format:      "table",
	}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func TestRun_Template(t *testing.T) {
	var out bytes.Buffer
	opts := testOptions()
	opts.template = true
	require.NoError(t, run(context.Background(), opts, nil, &config.Config{Concurrency: 1}, quietLogger(), &out))

	in, err := assumption.FromJSON(out.Bytes())
	require.NoError(t, err)
	assert.NoError(t, in.Validate())
}

func TestRun_TableForDefaultSite(t *testing.T) {
	var out bytes.Buffer
	opts := testOptions()
	opts.scenarios = true
	require.NoError(t, run(context.Background(), opts, nil, &config.Config{Concurrency: 2}, quietLogger(), &out))

	s := out.String()
	assert.Contains(t, s, "== new-development ==")
	assert.Contains(t, s, "DSCR")
	assert.Contains(t, s, "Expected")
	assert.Contains(t, s, "Checks:")
}

func TestRun_JSONForSites(t *testing.T) {
	var out bytes.Buffer
	opts := testOptions()
	opts.format = "json"
	files := []string{"../../pkg/core/loader/testdata/site.yaml"}
	require.NoError(t, run(context.Background(), opts, files, &config.Config{Concurrency: 2}, quietLogger(), &out))

	var reports []siteReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, "riverside", reports[0].Projection.Name)
	assert.Len(t, reports[0].Projection.Months, assumption.HorizonMonths)
	assert.True(t, reports[0].Checks.AllPassed)
}

func TestRun_UnknownFormat(t *testing.T) {
	opts := testOptions()
	opts.format = "xml"
	err := run(context.Background(), opts, nil, &config.Config{Concurrency: 1}, quietLogger(), &bytes.Buffer{})
	assert.Error(t, err)
}
