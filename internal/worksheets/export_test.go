package worksheets

var ListQuery = listQuery

var ExtValue = extValue
