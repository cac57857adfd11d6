package config

// DifferentiableAttrName is the source attribute that declares a function
// differentiable; reports and diagnostics refer to annotations by this name.
const DifferentiableAttrName = "@differentiable"

// ManifestFileName is the default module manifest consumed by adlookup.
const ManifestFileName = "admodule.yaml"

// ManifestFileExtensions are all recognized manifest file extensions.
var ManifestFileExtensions = []string{".yaml", ".yml"}

// SingleResultIndex is the only result position resolvable through the
// minimal-annotation path.
const SingleResultIndex = 0
