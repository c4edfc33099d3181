package obb

// epstol is used to check for badly conditioned denominators such as
// transformation matrix determinants, mirroring gsdf.go's epstol.
const epstol = 6e-7
