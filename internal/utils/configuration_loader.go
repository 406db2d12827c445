package utils

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	environmentKeySeparatorOldConstant              = "."
	environmentKeySeparatorNewConstant              = "_"
	dotEnvConfigurationTypeConstant                 = "env"
	listSeparatorConstant                           = ","
	configurationReadErrorTemplateConstant          = "failed to read configuration: %w"
	configurationUnmarshalErrorTemplateConstant     = "failed to parse configuration: %w"
	embeddedConfigurationMergeErrorTemplateConstant = "failed to merge embedded configuration: %w"
	environmentBindingErrorTemplateConstant         = "failed to bind %s to %s: %w"
	dotEnvReadErrorTemplateConstant                 = "failed to read environment file %s: %w"
)

// ConfigurationLoader wraps Viper to load structured configuration files and environment overrides.
type ConfigurationLoader struct {
	configurationName         string
	configurationType         string
	environmentPrefix         string
	searchPaths               []string
	environmentKeyReplacer    *strings.Replacer
	embeddedConfiguration     []byte
	embeddedConfigurationType string
	environmentBindings       map[string]string
	dotEnvFilePath            string
}

// LoadedConfiguration surfaces metadata about the resolved configuration.
type LoadedConfiguration struct {
	ConfigFileUsed string
	DotEnvFileUsed string
}

// NewConfigurationLoader creates a loader that searches known paths and respects an environment prefix.
func NewConfigurationLoader(configurationName string, configurationType string, environmentPrefix string, searchPaths []string) *ConfigurationLoader {
	duplicatedSearchPaths := make([]string, len(searchPaths))
	copy(duplicatedSearchPaths, searchPaths)

	return &ConfigurationLoader{
		configurationName:      configurationName,
		configurationType:      configurationType,
		environmentPrefix:      environmentPrefix,
		searchPaths:            duplicatedSearchPaths,
		environmentKeyReplacer: strings.NewReplacer(environmentKeySeparatorOldConstant, environmentKeySeparatorNewConstant),
		environmentBindings:    map[string]string{},
	}
}

// SetEmbeddedConfiguration stores embedded configuration data merged before user-provided configuration files.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(configurationData []byte, configurationType string) {
	if loader == nil {
		return
	}

	loader.embeddedConfiguration = nil
	loader.embeddedConfigurationType = strings.TrimSpace(configurationType)

	if len(configurationData) == 0 {
		return
	}

	duplicatedData := make([]byte, len(configurationData))
	copy(duplicatedData, configurationData)
	loader.embeddedConfiguration = duplicatedData
}

// SetEnvironmentBindings binds configuration keys to environment variable names that do not carry the prefix.
// Prefixed variables keep working alongside the explicit names.
func (loader *ConfigurationLoader) SetEnvironmentBindings(bindings map[string]string) {
	if loader == nil {
		return
	}

	loader.environmentBindings = make(map[string]string, len(bindings))
	for configurationKey, environmentVariableName := range bindings {
		trimmedName := strings.TrimSpace(environmentVariableName)
		if len(trimmedName) == 0 {
			continue
		}
		loader.environmentBindings[configurationKey] = trimmedName
	}
}

// SetDotEnvFile names a KEY=VALUE file whose entries fill bound environment variables absent from the process environment.
// A missing file is ignored.
func (loader *ConfigurationLoader) SetDotEnvFile(dotEnvFilePath string) {
	if loader == nil {
		return
	}
	loader.dotEnvFilePath = strings.TrimSpace(dotEnvFilePath)
}

// LoadConfiguration populates targetConfiguration using configuration files, defaults, and environment variables.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, defaultValues map[string]any, targetConfiguration any) (LoadedConfiguration, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigName(loader.configurationName)
	viperInstance.SetConfigType(loader.configurationType)

	if len(loader.embeddedConfiguration) > 0 {
		configurationType := loader.configurationType
		if len(loader.embeddedConfigurationType) > 0 {
			configurationType = loader.embeddedConfigurationType
		}

		viperInstance.SetConfigType(configurationType)
		mergeError := viperInstance.MergeConfig(bytes.NewReader(loader.embeddedConfiguration))
		if mergeError != nil {
			return LoadedConfiguration{}, fmt.Errorf(embeddedConfigurationMergeErrorTemplateConstant, mergeError)
		}

		viperInstance.SetConfigType(loader.configurationType)
	}

	for _, searchPath := range loader.searchPaths {
		viperInstance.AddConfigPath(searchPath)
	}

	viperInstance.SetEnvPrefix(loader.environmentPrefix)
	if loader.environmentKeyReplacer != nil {
		viperInstance.SetEnvKeyReplacer(loader.environmentKeyReplacer)
	}
	viperInstance.AutomaticEnv()

	for configurationKey, environmentVariableName := range loader.environmentBindings {
		if bindError := viperInstance.BindEnv(configurationKey, environmentVariableName); bindError != nil {
			return LoadedConfiguration{}, fmt.Errorf(environmentBindingErrorTemplateConstant, configurationKey, environmentVariableName, bindError)
		}
	}

	for defaultKey, defaultValue := range defaultValues {
		viperInstance.SetDefault(defaultKey, defaultValue)
	}

	if len(configurationFilePath) > 0 {
		viperInstance.SetConfigFile(configurationFilePath)
	}

	readError := viperInstance.MergeInConfig()
	if readError != nil {
		if _, isNotFound := readError.(viper.ConfigFileNotFoundError); !isNotFound {
			return LoadedConfiguration{}, fmt.Errorf(configurationReadErrorTemplateConstant, readError)
		}
	}

	dotEnvFileUsed, dotEnvError := loader.applyDotEnv(viperInstance)
	if dotEnvError != nil {
		return LoadedConfiguration{}, dotEnvError
	}

	unmarshalError := viperInstance.Unmarshal(targetConfiguration, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		trimStringDecodeHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(listSeparatorConstant),
	)))
	if unmarshalError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationUnmarshalErrorTemplateConstant, unmarshalError)
	}

	loadedConfiguration := LoadedConfiguration{
		ConfigFileUsed: viperInstance.ConfigFileUsed(),
		DotEnvFileUsed: dotEnvFileUsed,
	}

	return loadedConfiguration, nil
}

// applyDotEnv reads the dotenv file through a separate viper instance. Values only apply to bound keys
// whose environment variable is unset, so the process environment keeps precedence.
func (loader *ConfigurationLoader) applyDotEnv(viperInstance *viper.Viper) (string, error) {
	if len(loader.dotEnvFilePath) == 0 {
		return "", nil
	}

	if _, statError := os.Stat(loader.dotEnvFilePath); statError != nil {
		if errors.Is(statError, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf(dotEnvReadErrorTemplateConstant, loader.dotEnvFilePath, statError)
	}

	dotEnvInstance := viper.New()
	dotEnvInstance.SetConfigFile(loader.dotEnvFilePath)
	dotEnvInstance.SetConfigType(dotEnvConfigurationTypeConstant)
	if readError := dotEnvInstance.ReadInConfig(); readError != nil {
		return "", fmt.Errorf(dotEnvReadErrorTemplateConstant, loader.dotEnvFilePath, readError)
	}

	for configurationKey, environmentVariableName := range loader.environmentBindings {
		if loader.environmentProvides(configurationKey, environmentVariableName) {
			continue
		}
		if !dotEnvInstance.IsSet(environmentVariableName) {
			continue
		}
		viperInstance.Set(configurationKey, dotEnvInstance.GetString(environmentVariableName))
	}

	return loader.dotEnvFilePath, nil
}

func (loader *ConfigurationLoader) environmentProvides(configurationKey string, environmentVariableName string) bool {
	if _, present := os.LookupEnv(environmentVariableName); present {
		return true
	}

	prefixedName := strings.ToUpper(configurationKey)
	if loader.environmentKeyReplacer != nil {
		prefixedName = loader.environmentKeyReplacer.Replace(prefixedName)
	}
	if len(loader.environmentPrefix) > 0 {
		prefixedName = strings.ToUpper(loader.environmentPrefix) + environmentKeySeparatorNewConstant + prefixedName
	}
	_, present := os.LookupEnv(prefixedName)
	return present
}

func trimStringDecodeHook(sourceType reflect.Type, targetType reflect.Type, data any) (any, error) {
	if sourceType.Kind() != reflect.String || targetType.Kind() != reflect.String {
		return data, nil
	}
	stringValue, isString := data.(string)
	if !isString {
		return data, nil
	}
	return strings.TrimSpace(stringValue), nil
}
