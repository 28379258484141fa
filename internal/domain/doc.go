// Package domain models the dashboard's four data feeds — alerts, news,
// weather, and fuel prices — and the normalization policies that turn raw
// CSV rows into typed records.
//
// # Data Sources
//
// Every feed is an append-only CSV file written by the collectors and
// re-read in full on each query. None of the sources are schema-guaranteed:
// the news feed arrives with varying header spellings, the weather feed
// embeds JSON arrays inside single cells, and numeric cells anywhere may be
// blank or garbage. The record constructors therefore never fail; absent or
// unparseable values normalize to "", 0, or an empty list per field type.
//
// # Header Conventions
//
// The news feed lowercases headers and resolves aliases before assembly:
//
//	headline                 -> title
//	description, content     -> summary
//	region, area             -> location
//	importance               -> impact
//	timestamp, published_date -> date
//
// Unmapped news headers pass through verbatim under their lowercased name.
// The alert, weather, and fuel feeds keep header case as written.
//
// # Category Vocabulary
//
// News categories resolve to a closed vocabulary of ten values (see
// [Categories]). The cascade in [NormalizeCategory] tries the mapped
// category field, then any header containing "category", then the default
// "uncategorized"; aliases remap common spellings (transport -> traffic,
// govt -> government, medical -> health, ...), and anything still outside
// the vocabulary — including the "uncategorized" default itself — lands in
// "community". A parsed record's category is therefore always a vocabulary
// member.
//
// # Classification
//
// [Classify] scores free text against per-category keyword tables and
// derives subcategory, severity (high/medium/low/info via weighted keyword
// counts), a Sri Lankan place name, and an impact line. It backs the alert
// generator and the news collector; no external model is involved.
package domain
