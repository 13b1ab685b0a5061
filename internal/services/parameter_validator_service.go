package services

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"opla/pkg/oplatypes"
)

// ParameterError reports a parameter value that failed validation.
type ParameterError struct {
	Name   string // Parameter name, without the # sigil
	Value  string // Raw value as typed
	Reason string // Human-readable reason
}

// Error implements the error interface for ParameterError.
func (e *ParameterError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("parameter '%s': %s", e.Name, e.Reason)
	}
	return fmt.Sprintf("parameter '%s' = '%s': %s", e.Name, e.Value, e.Reason)
}

// ParameterValidatorService validates completion parameter values against the parameter catalog.
// Values arrive as the raw text of parameter value tokens and are coerced to their declared type.
type ParameterValidatorService struct {
	initialized bool
	definitions map[string]oplatypes.ParameterDefinition
}

// NewParameterValidatorService creates a new ParameterValidatorService instance.
func NewParameterValidatorService() *ParameterValidatorService {
	return &ParameterValidatorService{
		initialized: false,
		definitions: make(map[string]oplatypes.ParameterDefinition),
	}
}

// Name returns the service name "parameter_validator" for registration.
func (p *ParameterValidatorService) Name() string {
	return "parameter_validator"
}

// Initialize sets up the ParameterValidatorService for operation.
func (p *ParameterValidatorService) Initialize() error {
	p.initialized = true
	return nil
}

// SetDefinitions replaces the known parameter definitions.
func (p *ParameterValidatorService) SetDefinitions(parameterDefs []oplatypes.ParameterDefinition) {
	p.definitions = make(map[string]oplatypes.ParameterDefinition, len(parameterDefs))
	for _, paramDef := range parameterDefs {
		p.definitions[paramDef.Name] = paramDef
	}
}

// Definition returns the definition of a parameter by name.
func (p *ParameterValidatorService) Definition(name string) (oplatypes.ParameterDefinition, bool) {
	paramDef, ok := p.definitions[name]
	return paramDef, ok
}

// ValidateParameters validates raw parameter values keyed by name and returns the
// coerced values with defaults filled in for parameters that were not given.
// Every failing parameter is reported, joined in name order.
func (p *ParameterValidatorService) ValidateParameters(values map[string]string) (map[string]any, error) {
	if !p.initialized {
		return nil, fmt.Errorf("parameter validator service not initialized")
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make(map[string]any)
	var errs []error
	for _, name := range names {
		paramDef, exists := p.definitions[name]
		if !exists {
			errs = append(errs, &ParameterError{Name: name, Value: values[name], Reason: "unknown parameter"})
			continue
		}
		value, err := p.validateSingleParameter(values[name], paramDef)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		result[name] = value
	}

	for name, paramDef := range p.definitions {
		if _, provided := values[name]; provided {
			continue
		}
		if paramDef.Required {
			errs = append(errs, &ParameterError{Name: name, Reason: "required parameter is missing"})
			continue
		}
		if paramDef.Default != nil {
			result[name] = paramDef.Default
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return result, nil
}

// ValidateValue validates and coerces a single raw value for the named parameter.
func (p *ParameterValidatorService) ValidateValue(name, value string) (any, error) {
	if !p.initialized {
		return nil, fmt.Errorf("parameter validator service not initialized")
	}
	paramDef, exists := p.definitions[name]
	if !exists {
		return nil, &ParameterError{Name: name, Value: value, Reason: "unknown parameter"}
	}
	return p.validateSingleParameter(value, paramDef)
}

// validateSingleParameter validates a single parameter value against its definition.
func (p *ParameterValidatorService) validateSingleParameter(value string, paramDef oplatypes.ParameterDefinition) (any, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		if paramDef.Required {
			return nil, &ParameterError{Name: paramDef.Name, Reason: "required parameter cannot be empty"}
		}
		return paramDef.Default, nil
	}

	var (
		result any
		reason string
	)
	switch paramDef.Type {
	case "string":
		result, reason = validateStringValue(value, paramDef.Constraints)
	case "int":
		result, reason = validateIntValue(value, paramDef.Constraints)
	case "float":
		result, reason = validateFloatValue(value, paramDef.Constraints)
	case "bool":
		result, reason = validateBoolValue(value)
	case "enum":
		result, reason = validateEnumValue(value, paramDef.Constraints)
	default:
		reason = fmt.Sprintf("unsupported parameter type '%s'", paramDef.Type)
	}

	if reason != "" {
		return nil, &ParameterError{Name: paramDef.Name, Value: value, Reason: reason}
	}
	return result, nil
}

func validateStringValue(value string, constraints *oplatypes.ParameterConstraints) (string, string) {
	if constraints == nil || constraints.Pattern == nil {
		return value, ""
	}
	matched, err := regexp.MatchString(*constraints.Pattern, value)
	if err != nil {
		return "", fmt.Sprintf("invalid pattern in parameter definition: %v", err)
	}
	if !matched {
		return "", fmt.Sprintf("does not match required pattern '%s'", *constraints.Pattern)
	}
	return value, ""
}

func validateIntValue(value string, constraints *oplatypes.ParameterConstraints) (int, string) {
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, "invalid integer value"
	}
	if reason := checkRange(float64(intValue), constraints); reason != "" {
		return 0, reason
	}
	return intValue, ""
}

func validateFloatValue(value string, constraints *oplatypes.ParameterConstraints) (float64, string) {
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, "invalid float value"
	}
	if reason := checkRange(floatValue, constraints); reason != "" {
		return 0, reason
	}
	return floatValue, ""
}

func checkRange(value float64, constraints *oplatypes.ParameterConstraints) string {
	if constraints == nil {
		return ""
	}
	if constraints.Min != nil && value < *constraints.Min {
		return fmt.Sprintf("below minimum %g", *constraints.Min)
	}
	if constraints.Max != nil && value > *constraints.Max {
		return fmt.Sprintf("above maximum %g", *constraints.Max)
	}
	return ""
}

func validateBoolValue(value string) (bool, string) {
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true, ""
	case "false", "0", "no", "off":
		return false, ""
	default:
		return false, "invalid boolean value (use true/false, 1/0, yes/no, on/off)"
	}
}

func validateEnumValue(value string, constraints *oplatypes.ParameterConstraints) (string, string) {
	if constraints == nil || len(constraints.EnumValues) == 0 {
		return "", "enum parameter has no valid values defined"
	}
	for _, validValue := range constraints.EnumValues {
		if value == validValue {
			return value, ""
		}
	}
	return "", fmt.Sprintf("valid values: %s", strings.Join(constraints.EnumValues, ", "))
}

// GetParameterHelp returns a one-line help for a parameter.
func (p *ParameterValidatorService) GetParameterHelp(name string) (string, error) {
	paramDef, exists := p.definitions[name]
	if !exists {
		return "", fmt.Errorf("parameter '%s' not found", name)
	}

	help := fmt.Sprintf("%s (%s)", paramDef.Description, paramDef.Type)
	if paramDef.Required {
		help += " [REQUIRED]"
	} else if paramDef.Default != nil {
		help += fmt.Sprintf(" [default: %v]", paramDef.Default)
	}

	if constraints := paramDef.Constraints; constraints != nil {
		switch {
		case paramDef.Type == "enum" && len(constraints.EnumValues) > 0:
			help += fmt.Sprintf(" (valid values: %s)", strings.Join(constraints.EnumValues, ", "))
		case constraints.Min != nil && constraints.Max != nil:
			help += fmt.Sprintf(" (range: %g-%g)", *constraints.Min, *constraints.Max)
		case constraints.Min != nil:
			help += fmt.Sprintf(" (min: %g)", *constraints.Min)
		case constraints.Max != nil:
			help += fmt.Sprintf(" (max: %g)", *constraints.Max)
		}
	}
	return help, nil
}

func isSupportedParameterType(paramType string) bool {
	switch paramType {
	case "string", "int", "float", "bool", "enum":
		return true
	default:
		return false
	}
}
