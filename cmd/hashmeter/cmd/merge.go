// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2026 Datadog, Inc.

package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/DataDog/hashmeter/persist"
	"github.com/DataDog/hashmeter/tdigest"
	"github.com/DataDog/hashmeter/tdigest/encoding"
)

func (a *app) mergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge --out FILE SNAPSHOT...",
		Short: "Merges snapshots taken by several hashmeter instances",
		Args:  cobra.MinimumNArgs(1),
		RunE:  a.merge,
	}

	flags := cmd.Flags()
	flags.StringP("out", "o", "", "merged snapshot; the extension picks the format (.json, .pb, .bin)")
	addDigestFlags(flags)
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func (a *app) merge(cmd *cobra.Command, paths []string) error {
	opts, err := a.digestOptions()
	if err != nil {
		return err
	}
	merged, err := tdigest.New(opts...)
	if err != nil {
		return err
	}
	logger := a.component("merge")
	for _, path := range paths {
		digest, err := loadExisting(path, opts...)
		if err != nil {
			return err
		}
		logger.WithField("path", path).Debugf("Merging %g observations", digest.Count())
		merged = merged.Merge(digest)
	}

	out := a.config.GetString("out")
	if err := persist.NewFileStore(out, encoding.ForPath(out)).Save(merged); err != nil {
		return errors.Wrap(err, "saving merged snapshot")
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Merged %d snapshots into %s: %g observations in %d centroids\n",
		len(paths), out, merged.Count(), merged.Len())
	return err
}
