package cmn

// Logging is done through glog, the same fork lineage the teacher vendors
// as 3rdparty/glog; tsumugu has no per-subsystem verbosity modules to
// register, so it uses upstream github.com/golang/glog directly and wraps
// only the handful of call shapes used throughout the tree, so call sites
// read Log.Infof(...) the way the teacher reads glog.Infof(...).
import "github.com/golang/glog"

type logger struct{}

// Log is the package-wide logging handle, imported by every other package
// in this module instead of each importing glog directly, so a future
// switch of backend touches one file.
var Log logger

func (logger) Infof(format string, args ...interface{})    { glog.Infof(format, args...) }
func (logger) Warningf(format string, args ...interface{}) { glog.Warningf(format, args...) }
func (logger) Errorf(format string, args ...interface{})   { glog.Errorf(format, args...) }
func (logger) Flush()                                      { glog.Flush() }
