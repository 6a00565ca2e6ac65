package config

import (
	"slices"

	"github.com/gleyba/uber-poet/errors"
)

// Validate checks that the configuration is valid. Every failure is an
// errors.ErrConfig so generation never starts on bad parameters.
func (c *Config) Validate() error {
	g := c.Generation

	if !slices.Contains(GenTypes, g.GenType) {
		return errors.WithHintf(
			errors.NewConfigError("generation.gen_type %q is not supported", g.GenType),
			"use one of %v", GenTypes)
	}
	if g.Concurrency < 0 {
		return errors.NewConfigError("generation.concurrency must be >= 0, got %d", g.Concurrency)
	}

	switch g.GenType {
	case GenTypeFlat:
		if g.ModuleCount <= 0 {
			return errors.NewConfigError("generation.module_count must be > 0, got %d", g.ModuleCount)
		}
	case GenTypeLayered:
		if g.ModuleCount <= 0 {
			return errors.NewConfigError("generation.module_count must be > 0, got %d", g.ModuleCount)
		}
		if g.AppLayerCount <= 0 {
			return errors.NewConfigError("generation.app_layer_count must be > 0, got %d", g.AppLayerCount)
		}
	case GenTypeFlatBigSmall, GenTypeLayeredBigSmall:
		if g.BigModuleCount <= 0 {
			return errors.NewConfigError("generation.big_module_count must be > 0, got %d", g.BigModuleCount)
		}
		if g.SmallModuleCount <= 0 {
			return errors.NewConfigError("generation.small_module_count must be > 0, got %d", g.SmallModuleCount)
		}
	}

	if g.DotFilePath != "" && g.DotRootNodeName == "" {
		return errors.WithHint(
			errors.NewConfigError("generation.dot_file_path is set without generation.dot_root_node_name"),
			"pass --dot_root_node_name with the app target name")
	}
	if g.DotFilePath == "" && g.DotRootNodeName != "" {
		return errors.NewConfigError("generation.dot_root_node_name is set without generation.dot_file_path")
	}
	if g.GenType == GenTypeDot && g.DotFilePath == "" {
		return errors.NewConfigError("gen_type dot requires generation.dot_file_path")
	}
	if g.LOCFilePath != "" && g.GenType != GenTypeDot {
		return errors.WithHint(
			errors.NewConfigError("generation.loc_json_file_path only applies to dot graphs"),
			"module names in the LOC file must match nodes of the supplied graph")
	}
	if g.ClassesPerFile <= 0 {
		return errors.NewConfigError("generation.classes_per_file must be > 0, got %d", g.ClassesPerFile)
	}
	if g.FunctionsPerClass <= 0 {
		return errors.NewConfigError("generation.functions_per_class must be > 0, got %d", g.FunctionsPerClass)
	}

	// Zero imports disables cross references, negative is invalid
	if c.Imports.InnerPerClass < 0 {
		return errors.NewConfigError("imports.inner_per_class must be >= 0, got %d", c.Imports.InnerPerClass)
	}
	if c.Imports.ExternalPerClass < 0 {
		return errors.NewConfigError("imports.external_per_class must be >= 0, got %d", c.Imports.ExternalPerClass)
	}

	if p := c.IOS.ProjectGeneratorType; p != ProjectGeneratorBazel && p != ProjectGeneratorBuck {
		return errors.NewConfigError("ios.project_generator_type must be bazel or buck, got %q", p)
	}
	if c.IOS.SwiftLinesOfCode < 0 || c.IOS.ObjCLinesOfCode < 0 {
		return errors.NewConfigError("ios lines of code must be >= 0, got swift=%d objc=%d",
			c.IOS.SwiftLinesOfCode, c.IOS.ObjCLinesOfCode)
	}
	if c.IOS.SwiftLinesOfCode+c.IOS.ObjCLinesOfCode == 0 {
		return errors.NewConfigError("ios total lines of code is zero")
	}
	if c.Java.LinesOfCode <= 0 {
		return errors.NewConfigError("java.java_lines_of_code must be > 0, got %d", c.Java.LinesOfCode)
	}
	if c.Java.Package == "" {
		return errors.NewConfigError("java.java_package cannot be empty")
	}

	if c.Progress.IntervalMS <= 0 {
		return errors.NewConfigError("progress.interval_ms must be > 0, got %d", c.Progress.IntervalMS)
	}
	if c.Catalog.Enabled && c.Catalog.Path == "" {
		return errors.NewConfigError("catalog.path cannot be empty when the catalog is enabled")
	}

	return nil
}
