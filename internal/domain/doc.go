// Package domain models the two raw data feeds this service reconciles:
// metered energy demand and daily weather observations.
//
// # Data Sources
//
// Energy demand originates from the EIA open data API. Its rows carry a
// "period" timestamp (hourly, "2006-01-02T15"), a "respondent-name", and the
// demand value under an unqualified "value" column. Weather observations
// originate from NOAA GHCND daily summaries with "date", "temp_max_F",
// "temp_min_F", and "precipitation" columns. An upstream fetcher writes both
// feeds to the raw input directory as files named
//
//	{kind}_{cityToken}_{start}_{end}.{csv|json}
//
// where kind is "energy" or "weather" and the city token is free text.
//
// # Conventions
//
// Dates are calendar dates in UTC; any time-of-day component in the raw feed
// is discarded at parse time. City labels are canonicalized by trimming and
// title-casing, with "Unknown" as the sentinel for unusable tokens. Static
// city metadata (IANA timezone, WGS-84 coordinates) comes from a built-in
// table that an optional YAML file can extend.
//
// Both feeds contain recurring column-name defects ("responndent-name",
// "tempp_max_F") which are healed declaratively via the alias table in
// [HealFields] rather than patched inline by consumers.
package domain
