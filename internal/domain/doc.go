// Package domain models the Elder Vulnerability Index computed from CDC
// Social Vulnerability Index (SVI) data and elderly-population demographics.
//
// # Data Sources
//
// The SVI county table comes from the CDC/ATSDR Social Vulnerability Index,
// available at https://www.atsdr.cdc.gov/placeandhealth/svi/. Each county row
// carries RPL_THEMES, the overall vulnerability percentile rank in [0,1].
// CDC publishes -999 as the sentinel for suppressed or unavailable values;
// rows carrying it are excluded from the index with a data-quality warning.
//
// The demographics table is assembled from ACS age-distribution estimates and
// regional infrastructure assessments. Elderly share arrives as a percentage
// (0-100) and is normalized to a fraction at load time. Infrastructure quality
// is a normalized 0-1 score; funding is dollars per capita.
//
// Tables join on the five-digit county FIPS code. A county present in only
// one table is excluded and reported via [MissingDataError]; the build
// continues with the remaining counties.
//
// # Index
//
// The Elder Vulnerability Index is a weighted linear combination of the SVI
// percentile and the elderly population share. Linear weighting keeps the
// score auditable for a policy tool. Weights default to 0.5/0.5 and must sum
// to 1. A zero elderly share means the demographic datum is absent, and the
// index falls back to the SVI value alone. See [ComputeIndex].
//
// # Funding Simulation
//
// The simulator projects elder satisfaction after a proposed per-capita
// funding increase:
//
//	projected = min(1, baseline + k*ln(1+delta)*(1-quality))
//
// The log term models diminishing returns on funding; the (1-quality) factor
// shrinks the marginal benefit where infrastructure is already good. With no
// survey data, the satisfaction baseline defaults to the infrastructure
// quality score. See [Simulate].
//
// # Tiers
//
// Projected satisfaction maps to an intervention-priority tier, inverse to
// satisfaction: below 0.40 is high priority, 0.40-0.70 medium, above 0.70
// low. Thresholds are configurable. A region's tier in the index table is the
// tier of its baseline satisfaction, i.e. a zero-delta simulation.
//
// # Simulation IDs
//
// Simulation IDs are deterministic SHA-256 hashes of the inputs. Re-running a
// simulation with identical parameters yields the same ID, so results are
// re-derivable and safe to cache or publish without coordination. See
// [Simulate].
package domain
