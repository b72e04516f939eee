package orm

import "reflect"

var stringType = reflect.TypeOf("")
