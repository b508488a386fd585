// Package domain models USGS earthquake summary-feed data and the band tables
// used to filter it on the map.
//
// # Data Source
//
// Events come from the USGS real-time GeoJSON summary feeds, available at
// https://earthquake.usgs.gov/earthquakes/feed/v1.0/geojson.php. One feed
// exists per time window; the map exposes four of them:
//
//	Past 30 Days  →  all_month.geojson
//	Past 7 Days   →  all_week.geojson
//	Past Day      →  all_day.geojson
//	Past Hour     →  all_hour.geojson
//
// Each feature carries properties.mag, properties.place, properties.title,
// properties.url and properties.time (epoch milliseconds), and a Point
// geometry whose coordinates are [longitude, latitude, depth_km]. Depth is
// positive below the surface and can be slightly negative for events above
// the reference datum.
//
// # Bands
//
// Magnitude and depth are bucketed into named bands with closed intervals.
// Each table has an explicit "all" sentinel that spans the whole domain and
// means "no filter":
//
//	Magnitude (all = [-20, 20]):
//	  <2.5 [-20, 2.4] | 2.5-5.4 [2.5, 5.4] | 5.5-6.0 [5.5, 6.0] | 7.0-7.9 [7.0, 7.9] | 8.0+ [8.0, 20]
//	Depth (all = [-10, 1000]):
//	  -10-10 [-10, 9.9] | 10-30 [10, 29.9] | 30-50 [30, 49.9] | 50-70 [50, 69.9] | 70-90 [70, 89.9] | 90+ [90, 1000]
//
// Values are rounded to one decimal place before comparison, see
// [RoundOneDecimal]. The magnitude table has no band for 6.1–6.9; such
// events are unclassified and drop out of band filtering. This gap is kept
// on purpose until the band set is revisited.
//
// # Visual Encoding
//
// Markers use a continuous encoding independent of the bands: radius grows
// with the square root of magnitude ([MarkerRadius]) and fill colour steps
// through six depth thresholds ([DepthColor]). Heat points are weighted by
// (1 + magnitude) * 4 ([HeatWeight]).
package domain
