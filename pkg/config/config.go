// Package config loads formiq settings from YAML files and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	formiq "github.com/goliatone/go-formiq"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Expression engines accepted in File.Engine.
const (
	EngineNone = ""
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineJS   = "js"
)

var (
	// ErrUnknownEngine is returned for an engine name that is not supported.
	ErrUnknownEngine = errors.New("config: unknown expression engine")
	// ErrEngineUnavailable is returned when the js engine was not compiled in.
	ErrEngineUnavailable = errors.New("config: expression engine unavailable")
)

// File is the on-disk shape of formiq settings.
type File struct {
	ValidatorAttribute string                       `yaml:"validator_attribute"`
	ConverterAttribute string                       `yaml:"converter_attribute"`
	Engine             string                       `yaml:"engine"`
	Args               map[string]any               `yaml:"args"`
	Messages           map[string]map[string]string `yaml:"messages"`
}

// Env is read from FORMIQ_* variables.
type Env struct {
	ValidatorAttribute string `env:"FORMIQ_VALIDATOR_ATTRIBUTE"`
	ConverterAttribute string `env:"FORMIQ_CONVERTER_ATTRIBUTE"`
	Engine             string `env:"FORMIQ_ENGINE"`
	File               string `env:"FORMIQ_CONFIG_FILE"`
}

// Load reads and parses the YAML file at path.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	file, err := Parse(data)
	if err != nil {
		return File{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return file, nil
}

// Parse decodes YAML settings.
func Parse(data []byte) (File, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return File{}, fmt.Errorf("config: parse yaml: %w", err)
	}
	file.Engine = strings.ToLower(strings.TrimSpace(file.Engine))
	return file, nil
}

// FromEnv loads dotenv files, then reads FORMIQ_* variables. With no files
// the default .env is loaded when present. When FORMIQ_CONFIG_FILE is set the
// file is loaded first and environment values override it.
func FromEnv(files ...string) (File, error) {
	if len(files) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(files...); err != nil {
		return File{}, fmt.Errorf("config: load dotenv: %w", err)
	}

	var vars Env
	if err := env.Parse(&vars); err != nil {
		return File{}, fmt.Errorf("config: parse env: %w", err)
	}

	var file File
	if vars.File != "" {
		loaded, err := Load(vars.File)
		if err != nil {
			return File{}, err
		}
		file = loaded
	}
	return file.Merge(File{
		ValidatorAttribute: vars.ValidatorAttribute,
		ConverterAttribute: vars.ConverterAttribute,
		Engine:             strings.ToLower(strings.TrimSpace(vars.Engine)),
	}), nil
}

// Merge returns f with every non-empty value of override applied on top.
func (f File) Merge(override File) File {
	out := f
	if override.ValidatorAttribute != "" {
		out.ValidatorAttribute = override.ValidatorAttribute
	}
	if override.ConverterAttribute != "" {
		out.ConverterAttribute = override.ConverterAttribute
	}
	if override.Engine != "" {
		out.Engine = override.Engine
	}
	if len(override.Args) > 0 {
		args := make(map[string]any, len(f.Args)+len(override.Args))
		for k, v := range f.Args {
			args[k] = v
		}
		for k, v := range override.Args {
			args[k] = v
		}
		out.Args = args
	}
	if len(override.Messages) > 0 {
		messages := formiq.MessageTable{}
		for field, kinds := range f.Messages {
			for kind, message := range kinds {
				setMessage(messages, field, kind, message)
			}
		}
		for field, kinds := range override.Messages {
			for kind, message := range kinds {
				setMessage(messages, field, kind, message)
			}
		}
		out.Messages = messages
	}
	return out
}

// Options converts the file into formiq settings options. When an engine is
// named, a validator factory backed by it is included; expression options are
// passed through to formiq.ExpressionValidators.
func (f File) Options(exprOpts ...formiq.ExpressionOption) ([]formiq.Option, error) {
	var opts []formiq.Option
	if f.ValidatorAttribute != "" {
		opts = append(opts, formiq.WithValidatorAttribute(f.ValidatorAttribute))
	}
	if f.ConverterAttribute != "" {
		opts = append(opts, formiq.WithConverterAttribute(f.ConverterAttribute))
	}
	if len(f.Messages) > 0 {
		opts = append(opts, formiq.WithErrorMessages(formiq.MessageTable(f.Messages)))
	}

	evaluator, err := NewEvaluator(f.Engine)
	if err != nil {
		return nil, err
	}
	if evaluator != nil {
		if len(f.Args) > 0 {
			exprOpts = append([]formiq.ExpressionOption{formiq.WithExpressionArgs(f.Args)}, exprOpts...)
		}
		opts = append(opts, formiq.WithValidatorFactory(formiq.ExpressionValidators(evaluator, exprOpts...)))
	}
	return opts, nil
}

// NewEvaluator builds the evaluator for engine with a shared program cache.
// EngineNone returns a nil evaluator and no error.
func NewEvaluator(engine string) (formiq.Evaluator, error) {
	cache := formiq.NewProgramCache()
	registry := formiq.NewConverterRegistryFrom(formiq.Defaults().Converters)

	switch strings.ToLower(strings.TrimSpace(engine)) {
	case EngineNone:
		return nil, nil
	case EngineExpr:
		return formiq.NewExprEvaluator(
			formiq.ExprWithProgramCache(cache),
			formiq.ExprWithConverters(registry),
		), nil
	case EngineCEL:
		return formiq.NewCELEvaluator(
			formiq.CELWithProgramCache(cache),
			formiq.CELWithConverters(registry),
		), nil
	case EngineJS:
		if !formiq.JSEvaluatorAvailable() {
			return nil, fmt.Errorf("%w: %s (build with -tags js_eval)", ErrEngineUnavailable, engine)
		}
		return formiq.NewJSEvaluator(
			formiq.JSWithProgramCache(cache),
			formiq.JSWithConverters(registry),
		), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}
}

func setMessage(table formiq.MessageTable, field, kind, message string) {
	if table[field] == nil {
		table[field] = map[string]string{}
	}
	table[field][kind] = message
}
