package compositor

import "errors"

// ErrNoPrimary is a log-only condition (never returned to a caller that
// would abort anything): EndFrame has nothing mapped to compose.
var ErrNoPrimary = errors.New("compositor: no primary surface mapped and no surfaces touched")

// ErrCacheMiss marks a CacheToSurface referencing an unpopulated slot —
// logged as a warning, never fatal, per spec §7.
var ErrCacheMiss = errors.New("compositor: cache slot miss")
